package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"socialite-be/internal/entity"
	"socialite-be/internal/model"
	"socialite-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dev seeder: a handful of users, a follow edge, one conversation with
// messages and a pending notification. Idempotent on username.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo data...")

	alice := seedUser(db, "Alice Tan", "alice", "alice@example.com", false)
	bob := seedUser(db, "Bob Rahman", "bob", "bob@example.com", false)
	cara := seedUser(db, "Cara Wijaya", "cara", "cara@example.com", true)

	seedFollow(db, alice, bob)
	seedChat(db, alice, bob)
	seedNotification(db, bob, alice, "bob has started following you.")
	_ = cara

	color.Green("Seed complete.")
}

func seedUser(db *gorm.DB, fullName, username, email string, private bool) uuid.UUID {
	var existing model.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		color.Yellow("User '%s' already exists, skipping...", username)
		return existing.Id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: failed to hash password:", err)
	}

	user := model.User{
		Id:           uuid.New(),
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
		IsPrivate:    private,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("Error: failed to create user:", err)
	}

	color.Green("Created user '%s'", username)
	return user.Id
}

func seedFollow(db *gorm.DB, follower, target uuid.UUID) {
	var t model.User
	if err := db.Where("id = ?", target).First(&t).Error; err != nil {
		log.Fatal("Error: target user missing:", err)
	}
	for _, id := range t.Followers {
		if id == follower {
			return
		}
	}
	t.Followers = append(t.Followers, follower)
	if err := db.Save(&t).Error; err != nil {
		log.Fatal("Error: failed to save follower:", err)
	}

	var f model.User
	if err := db.Where("id = ?", follower).First(&f).Error; err != nil {
		log.Fatal("Error: follower user missing:", err)
	}
	f.Following = append(f.Following, target)
	if err := db.Save(&f).Error; err != nil {
		log.Fatal("Error: failed to save following:", err)
	}
}

func seedChat(db *gorm.DB, a, b uuid.UUID) {
	pairKey := entity.PairKey(a, b)

	var existing model.ChatRoom
	if err := db.Where("pair_key = ?", pairKey).First(&existing).Error; err == nil {
		color.Yellow("Chat room for pair already exists, skipping...")
		return
	}

	now := time.Now()
	messages := []entity.Message{
		{Id: uuid.New(), Sender: a, Content: "hey! welcome aboard", SentAt: now.Add(-2 * time.Hour)},
		{Id: uuid.New(), Sender: b, Content: "thanks, good to be here", SentAt: now.Add(-1 * time.Hour)},
	}
	messagesJSON, _ := json.Marshal(messages)
	lastMessageJSON, _ := json.Marshal(entity.LastMessage{User: b, Message: "thanks, good to be here"})
	lastSeenJSON, _ := json.Marshal([]entity.LastSeenEntry{})

	lastAt := now.Add(-1 * time.Hour)
	room := model.ChatRoom{
		Id:            uuid.New(),
		PairKey:       pairKey,
		Participants:  datatypes.NewJSONSlice([]uuid.UUID{a, b}),
		Messages:      datatypes.JSON(messagesJSON),
		DeletedFor:    datatypes.NewJSONSlice([]uuid.UUID{}),
		LastMessage:   datatypes.JSON(lastMessageJSON),
		LastSeen:      datatypes.JSON(lastSeenJSON),
		LastMessageAt: &lastAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&room).Error; err != nil {
		log.Fatal("Error: failed to create chat room:", err)
	}
	color.Green("Created chat room with %d messages", len(messages))
}

func seedNotification(db *gorm.DB, from, to uuid.UUID, message string) {
	fromID := from
	n := model.Notification{
		Id:         uuid.New(),
		FromUserId: &fromID,
		ToUserId:   to,
		Kind:       string(entity.NotificationFollow),
		Message:    message,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&n).Error; err != nil {
		log.Fatal("Error: failed to create notification:", err)
	}
	color.Green("Created notification for %s", to)
}
