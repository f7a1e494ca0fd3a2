package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const optionsField = "options"

type optionsDocument struct {
	Account string            `bson:"_id"`
	Options map[string]string `bson:"options"`
}

// OptionBackend keeps one document per account, with every option as a
// field of its "options" subdocument. It implements secondfactor.Backend.
type OptionBackend struct {
	coll *mongo.Collection
}

func NewOptionBackend(db *mongo.Database, collection string) *OptionBackend {
	return &OptionBackend{coll: db.Collection(collection)}
}

func (b *OptionBackend) Get(ctx context.Context, account, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	var doc optionsDocument
	err := b.coll.FindOne(ctx,
		bson.D{{Key: "_id", Value: account}},
		options.FindOne().SetProjection(bson.D{{Key: optionsField + "." + key, Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	value, ok := doc.Options[key]
	return value, ok, nil
}

// GetAll returns the options subdocument of account.
func (b *OptionBackend) GetAll(ctx context.Context, account string) (map[string]string, error) {
	var doc optionsDocument
	err := b.coll.FindOne(ctx,
		bson.D{{Key: "_id", Value: account}},
		options.FindOne().SetProjection(bson.D{{Key: optionsField, Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Options == nil {
		return map[string]string{}, nil
	}
	return doc.Options, nil
}

// Commit applies changes with a single upserting update, which MongoDB
// executes atomically on the account document.
func (b *OptionBackend) Commit(ctx context.Context, account string, changes map[string]string) error {
	if len(changes) == 0 {
		return nil
	}

	set := bson.D{}
	unset := bson.D{}
	for k, v := range changes {
		if err := validateKey(k); err != nil {
			return err
		}
		if v == "" {
			unset = append(unset, bson.E{Key: optionsField + "." + k, Value: ""})
			continue
		}
		set = append(set, bson.E{Key: optionsField + "." + k, Value: v})
	}

	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	_, err := b.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: account}},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, ".") || strings.HasPrefix(key, "$") {
		return ErrInvalidOptionKey
	}
	return nil
}
