package firestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ffaguiar/verbo/internal/domain"
)

// Store keeps each session as a document holding its expiry plus a
// "turns" subcollection ordered by a monotonic sequence number.
// Firestore breaks equal-key ties by document ID, and Add generates
// random IDs, so ordering by created_at alone would replay turns of
// one exchange in random order. Firestore also has no per-document TTL
// visible to reads, so expiry is a field checked on read and refreshed
// on write.
type Store struct {
	client *firestore.Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	lastSeq int64
}

// NewStore creates a Firestore-backed session store in the given project.
func NewStore(ctx context.Context, projectID string, ttl time.Duration) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.client.Collection("sessions").Doc(string(id))
}

func (s *Store) turnsCol(id domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(id).Collection("turns")
}

type sessionDoc struct {
	ExpiresAt time.Time `firestore:"expires_at"`
}

type turnDoc struct {
	Seq       int64     `firestore:"seq"`
	Role      string    `firestore:"role"`
	Text      string    `firestore:"text"`
	ImageB64  string    `firestore:"image_b64"`
	CreatedAt time.Time `firestore:"created_at"`
}

// nextSeq issues strictly increasing sequence numbers so appends keep
// their order even when turns share a created_at stamp.
func (s *Store) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

func (s *Store) GetTurns(ctx context.Context, id domain.SessionID) ([]domain.Turn, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: firestore get session: %v", domain.ErrStoreUnavailable, err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decoding session doc: %w", err)
	}
	if s.now().After(doc.ExpiresAt) {
		return nil, nil
	}

	iter := s.turnsCol(id).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var turns []domain.Turn
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: firestore list turns: %v", domain.ErrStoreUnavailable, err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decoding turn doc: %w", err)
		}
		turns = append(turns, domain.Turn{
			Role:      domain.Role(doc.Role),
			Text:      doc.Text,
			ImageB64:  doc.ImageB64,
			CreatedAt: doc.CreatedAt,
		})
	}
	return turns, nil
}

func (s *Store) AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error {
	expiresAt := s.now().Add(s.ttl)

	if _, err := s.sessionDoc(id).Set(ctx, sessionDoc{ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("%w: firestore set session: %v", domain.ErrStoreUnavailable, err)
	}

	doc := turnDoc{
		Seq:       s.nextSeq(),
		Role:      string(turn.Role),
		Text:      turn.Text,
		ImageB64:  turn.ImageB64,
		CreatedAt: turn.CreatedAt,
	}
	if _, _, err := s.turnsCol(id).Add(ctx, doc); err != nil {
		return fmt.Errorf("%w: firestore append turn: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id domain.SessionID) error {
	_, err := s.sessionDoc(id).Set(ctx, map[string]interface{}{
		"expires_at": s.now().Add(s.ttl),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("%w: firestore touch session: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
