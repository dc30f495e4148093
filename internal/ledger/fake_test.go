package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order_desk_bot/internal/domain"
)

// fakeUsers is an in-memory stand-in for the users collection. It interprets
// exactly the filters and update operators the ledger issues, and applies each
// update atomically under one lock, mirroring Mongo single-document semantics.
type fakeUsers struct {
	mu   sync.Mutex
	docs map[int64]domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{docs: make(map[int64]domain.User)}
}

func (f *fakeUsers) snapshot(userID int64) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[userID]
	return u, ok
}

func (f *fakeUsers) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	filterDoc, ok := filter.(bson.M)
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, fmt.Errorf("unexpected filter type %T", filter), nil)
	}

	for _, u := range f.docs {
		if matchesUser(filterDoc, u) {
			return mongo.NewSingleResultFromDocument(u, nil, nil)
		}
	}

	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeUsers) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	users := make([]domain.User, 0, len(f.docs))
	for _, u := range f.docs {
		users = append(users, u)
	}
	f.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	docs := make([]interface{}, len(users))
	for i, u := range users {
		docs[i] = u
	}

	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeUsers) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	user, ok := document.(domain.User)
	if !ok {
		return nil, fmt.Errorf("unexpected document type %T", document)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.docs[user.UserID]; exists {
		return nil, duplicateKeyError()
	}
	for _, u := range f.docs {
		if u.Alias == user.Alias {
			return nil, duplicateKeyError()
		}
	}

	f.docs[user.UserID] = user
	return &mongo.InsertOneResult{InsertedID: user.UserID}, nil
}

func (f *fakeUsers) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	filterDoc, ok := filter.(bson.M)
	if !ok {
		return nil, fmt.Errorf("unexpected filter type %T", filter)
	}
	updateDoc, ok := update.(bson.M)
	if !ok {
		return nil, fmt.Errorf("unexpected update type %T", update)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, u := range f.docs {
		if !matchesUser(filterDoc, u) {
			continue
		}

		if set, ok := updateDoc["$set"].(bson.M); ok {
			if alias, ok := set["alias"].(string); ok {
				for otherID, other := range f.docs {
					if otherID != id && other.Alias == alias {
						return nil, duplicateKeyError()
					}
				}
			}
			applySet(&u, set)
		}
		if inc, ok := updateDoc["$inc"].(bson.M); ok {
			u.Balance += asInt64(inc["balance"])
		}

		f.docs[id] = u
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	return &mongo.UpdateResult{}, nil
}

func (f *fakeUsers) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	filterDoc, ok := filter.(bson.M)
	if !ok {
		return 0, fmt.Errorf("unexpected filter type %T", filter)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, u := range f.docs {
		if matchesUser(filterDoc, u) {
			count++
		}
	}

	return count, nil
}

func matchesUser(filter bson.M, u domain.User) bool {
	for key, want := range filter {
		switch key {
		case "user_id":
			if asInt64(want) != u.UserID {
				return false
			}
		case "alias":
			if want != u.Alias {
				return false
			}
		case "balance":
			cond, ok := want.(bson.M)
			if !ok {
				return false
			}
			if min, ok := cond["$gte"]; ok && u.Balance < asInt64(min) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func applySet(u *domain.User, set bson.M) {
	for key, val := range set {
		switch key {
		case "username":
			u.Username, _ = val.(string)
		case "first_name":
			u.FirstName, _ = val.(string)
		case "alias":
			u.Alias, _ = val.(string)
		case "balance":
			u.Balance = asInt64(val)
		case "ban_status":
			u.BanStatus, _ = val.(string)
		case "ban_reason":
			u.BanReason, _ = val.(string)
		case "ban_expires_at":
			u.BanExpiresAt = asTime(val)
		case "updated_at":
			u.UpdatedAt = asTime(val)
		}
	}
}
