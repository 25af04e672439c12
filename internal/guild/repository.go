package guild

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "guilds"

type Repository interface {
	CreateIfNew(ctx context.Context, guildID uint64) (*RegisteredGuild, error)
	GetByGuildID(ctx context.Context, guildID uint64) (*RegisteredGuild, error)
	GetByCode(ctx context.Context, code string) (*RegisteredGuild, error)
	GetByCodeAndClanName(ctx context.Context, code, clanName string) (*RegisteredGuild, error)
	GetByClanName(ctx context.Context, clanName string) (*RegisteredGuild, error)
	List(ctx context.Context) ([]RegisteredGuild, error)
	Update(ctx context.Context, g *RegisteredGuild) error
	Delete(ctx context.Context, guildID uint64) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection(collectionName),
	}
}

func (r *mongoRepository) CreateIfNew(ctx context.Context, guildID uint64) (*RegisteredGuild, error) {
	existing, err := r.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	g := NewRegisteredGuild(guildID)
	if err := r.ensureUniqueCode(ctx, g); err != nil {
		return nil, err
	}

	if _, err := r.collection.InsertOne(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}
	return g, nil
}

// ensureUniqueCode regenerates the verification code until no other
// registration holds its hash. Collisions over a nine digit space are rare
// but must not hand two tenants the same code.
func (r *mongoRepository) ensureUniqueCode(ctx context.Context, g *RegisteredGuild) error {
	for {
		count, err := r.collection.CountDocuments(ctx, bson.M{"hashed_verification_code": g.HashedVerificationCode})
		if err != nil {
			return fmt.Errorf("failed to check verification code uniqueness: %w", err)
		}
		if count == 0 {
			return nil
		}

		code := GenerateVerificationCode()
		g.VerificationCode = code
		g.HashedVerificationCode = HashCode(code)
	}
}

func (r *mongoRepository) GetByGuildID(ctx context.Context, guildID uint64) (*RegisteredGuild, error) {
	return r.findOne(ctx, bson.M{"guild_id": guildID})
}

func (r *mongoRepository) GetByCode(ctx context.Context, code string) (*RegisteredGuild, error) {
	return r.findOne(ctx, bson.M{"hashed_verification_code": HashCode(code)})
}

func (r *mongoRepository) GetByCodeAndClanName(ctx context.Context, code, clanName string) (*RegisteredGuild, error) {
	return r.findOne(ctx, bson.M{
		"hashed_verification_code": HashCode(code),
		"clan_name":                clanName,
	})
}

func (r *mongoRepository) GetByClanName(ctx context.Context, clanName string) (*RegisteredGuild, error) {
	return r.findOne(ctx, bson.M{"clan_name": clanName})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*RegisteredGuild, error) {
	var g RegisteredGuild
	err := r.collection.FindOne(ctx, filter).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}
	return &g, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]RegisteredGuild, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer cursor.Close(ctx)

	var guilds []RegisteredGuild
	if err := cursor.All(ctx, &guilds); err != nil {
		return nil, fmt.Errorf("failed to decode guilds: %w", err)
	}
	return guilds, nil
}

func (r *mongoRepository) Update(ctx context.Context, g *RegisteredGuild) error {
	g.UpdatedAt = time.Now().UTC()

	filter := bson.M{"guild_id": g.GuildID}
	result, err := r.collection.ReplaceOne(ctx, filter, g)
	if err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, guildID uint64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return fmt.Errorf("failed to delete guild: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("guild not found")
	}
	return nil
}
