package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"zerobarrier/internal/models"
)

const usersCollection = "users"

type accountDocument struct {
	ID                    string                       `bson:"_id"`
	Email                 string                       `bson:"email"`
	Phone                 string                       `bson:"phone,omitempty"`
	PasswordHash          string                       `bson:"password_hash"`
	Role                  string                       `bson:"role"`
	IsVerified            bool                         `bson:"is_verified"`
	VerificationTokenHash string                       `bson:"verification_token_hash,omitempty"`
	Profile               models.Profile               `bson:"profile"`
	Notifications         *models.NotificationSettings `bson:"notifications,omitempty"`
	Preferences           *models.Preferences          `bson:"preferences,omitempty"`
	CreatedAt             time.Time                    `bson:"created_at"`
	UpdatedAt             time.Time                    `bson:"updated_at"`
}

func documentFrom(a *models.Account) accountDocument {
	return accountDocument{
		ID:                    a.ID,
		Email:                 a.Email,
		Phone:                 a.Phone,
		PasswordHash:          a.PasswordHash,
		Role:                  a.Role.String(),
		IsVerified:            a.IsVerified,
		VerificationTokenHash: a.VerificationTokenHash,
		Profile:               a.Profile,
		Notifications:         a.Notifications,
		Preferences:           a.Preferences,
		CreatedAt:             a.CreatedAt.UTC(),
		UpdatedAt:             a.UpdatedAt.UTC(),
	}
}

func (d *accountDocument) toModel() (*models.Account, error) {
	role, err := models.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", d.ID, err)
	}
	return &models.Account{
		ID:                    d.ID,
		Email:                 d.Email,
		Phone:                 d.Phone,
		PasswordHash:          d.PasswordHash,
		Role:                  role,
		IsVerified:            d.IsVerified,
		VerificationTokenHash: d.VerificationTokenHash,
		Profile:               d.Profile,
		Notifications:         d.Notifications,
		Preferences:           d.Preferences,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}, nil
}

// MongoRepository stores accounts in the "users" collection.
type MongoRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	logger *zap.Logger
}

// NewMongoRepository connects to uri, verifies the connection and makes sure
// the unique email index exists.
func NewMongoRepository(ctx context.Context, uri, dbName string, logger *zap.Logger) (*MongoRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := &MongoRepository{
		client: client,
		users:  client.Database(dbName).Collection(usersCollection),
		logger: logger,
	}
	if err := r.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Successfully connected to the database!", zap.String("driver", "mongo"), zap.String("database", dbName))
	return r, nil
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("role"),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, account *models.Account) error {
	_, err := r.users.InsertOne(ctx, documentFrom(account))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*models.Account, error) {
	var doc accountDocument
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toModel()
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: at.UTC()},
	}, nil)
}

func (r *MongoRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "is_verified", Value: true},
		{Key: "updated_at", Value: at.UTC()},
	}, bson.D{{Key: "verification_token_hash", Value: ""}})
}

func (r *MongoRepository) UpdateEmployerProfile(ctx context.Context, id, email, phone string, profile *models.EmployerProfile, at time.Time) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "email", Value: email},
		{Key: "phone", Value: phone},
		{Key: "profile.employer", Value: profile},
		{Key: "updated_at", Value: at.UTC()},
	}, nil)
}

func (r *MongoRepository) UpdateNotificationSettings(ctx context.Context, id string, settings models.NotificationSettings, at time.Time) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "notifications", Value: settings},
		{Key: "updated_at", Value: at.UTC()},
	}, nil)
}

func (r *MongoRepository) updateOne(ctx context.Context, id string, set, unset bson.D) error {
	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
