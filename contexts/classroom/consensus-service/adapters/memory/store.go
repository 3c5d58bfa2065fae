package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"

	"github.com/google/uuid"
)

// outboxRecord keeps the append sequence so rows relay in commit order even
// when their timestamps collide.
type outboxRecord struct {
	message   ports.OutboxMessage
	sequence  int64
	published bool
}

type studentVoteKey struct {
	presentationID int64
	voter          string
}

// Store is a single-writer in-memory classroom. Atomic holds the write lock
// for the whole unit of work and merges staged writes only on success.
type Store struct {
	mu sync.RWMutex

	identities    map[string]entities.Identity
	roster        entities.Roster
	presentations map[int64]entities.Presentation
	nextID        int64
	studentVotes  map[studentVoteKey]struct{}
	outbox        map[string]outboxRecord
	outboxSeq     int64
}

func NewStore() *Store {
	return &Store{
		identities:    make(map[string]entities.Identity),
		presentations: make(map[int64]entities.Presentation),
		nextID:        entities.FirstPresentationID,
		studentVotes:  make(map[studentVoteKey]struct{}),
		outbox:        make(map[string]outboxRecord),
	}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{
		store:         s,
		identities:    make(map[string]entities.Identity),
		presentations: make(map[int64]entities.Presentation),
		nextID:        s.nextID,
		studentVotes:  make(map[studentVoteKey]struct{}),
		outbox:        make(map[string]outboxRecord),
		outboxSeq:     s.outboxSeq,
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetIdentity(_ context.Context, address string) (entities.Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[entities.NormalizeAddress(address)]
	return identity, ok, nil
}

func (s *Store) GetRoster(_ context.Context) (entities.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster, nil
}

func (s *Store) GetPresentation(_ context.Context, id int64) (entities.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	presentation, ok := s.presentations[id]
	if !ok {
		return entities.Presentation{}, domainerrors.ErrPresentationNotFound
	}
	return clonePresentation(presentation), nil
}

func (s *Store) ListPresentationIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.presentations))
	for id := range s.presentations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) ListStudents(_ context.Context) ([]entities.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Identity, 0)
	for _, identity := range s.identities {
		if identity.Role == entities.RoleStudent {
			items = append(items, identity)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].RegisteredAt.Equal(items[j].RegisteredAt) {
			return items[i].Address < items[j].Address
		}
		return items[i].RegisteredAt.Before(items[j].RegisteredAt)
	})
	students := make([]entities.Student, 0, len(items))
	for _, identity := range items {
		students = append(students, entities.Student{Address: identity.Address, Name: identity.Name})
	}
	return students, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].sequence < rows[j].sequence })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// storeTx stages writes over the committed maps. The store's write lock is
// held for the lifetime of the transaction.
type storeTx struct {
	store *Store

	identities    map[string]entities.Identity
	roster        *entities.Roster
	presentations map[int64]entities.Presentation
	nextID        int64
	studentVotes  map[studentVoteKey]struct{}
	outbox        map[string]outboxRecord
	outboxSeq     int64
}

func (tx *storeTx) GetIdentity(_ context.Context, address string) (entities.Identity, bool, error) {
	address = entities.NormalizeAddress(address)
	if identity, ok := tx.identities[address]; ok {
		return identity, true, nil
	}
	identity, ok := tx.store.identities[address]
	return identity, ok, nil
}

func (tx *storeTx) SaveIdentity(_ context.Context, identity entities.Identity) error {
	identity.Address = entities.NormalizeAddress(identity.Address)
	if identity.Address == "" {
		return domainerrors.ErrInvalidInput
	}
	if existing, ok := tx.store.identities[identity.Address]; ok && existing.Role != identity.Role {
		return domainerrors.ErrConflict
	}
	tx.identities[identity.Address] = identity
	return nil
}

func (tx *storeTx) GetRoster(_ context.Context) (entities.Roster, error) {
	if tx.roster != nil {
		return *tx.roster, nil
	}
	return tx.store.roster, nil
}

func (tx *storeTx) SaveRoster(_ context.Context, roster entities.Roster) error {
	tx.roster = &roster
	return nil
}

func (tx *storeTx) NextPresentationID(_ context.Context) (int64, error) {
	id := tx.nextID
	tx.nextID++
	return id, nil
}

func (tx *storeTx) GetPresentation(_ context.Context, id int64) (entities.Presentation, error) {
	if presentation, ok := tx.presentations[id]; ok {
		return clonePresentation(presentation), nil
	}
	presentation, ok := tx.store.presentations[id]
	if !ok {
		return entities.Presentation{}, domainerrors.ErrPresentationNotFound
	}
	return clonePresentation(presentation), nil
}

func (tx *storeTx) SavePresentation(_ context.Context, presentation entities.Presentation) error {
	tx.presentations[presentation.ID] = clonePresentation(presentation)
	return nil
}

func (tx *storeTx) MarkStudentVoted(_ context.Context, presentationID int64, voter string) (bool, error) {
	key := studentVoteKey{presentationID: presentationID, voter: entities.NormalizeAddress(voter)}
	if _, ok := tx.studentVotes[key]; ok {
		return false, nil
	}
	if _, ok := tx.store.studentVotes[key]; ok {
		return false, nil
	}
	tx.studentVotes[key] = struct{}{}
	return true, nil
}

func (tx *storeTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	existing, ok := tx.outbox[outboxID]
	if !ok {
		existing, ok = tx.store.outbox[outboxID]
	}
	if ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	message := ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    createdAt,
	}
	tx.outboxSeq++
	tx.outbox[outboxID] = outboxRecord{message: message, sequence: tx.outboxSeq}
	return nil
}

func (tx *storeTx) commit() {
	s := tx.store
	for address, identity := range tx.identities {
		s.identities[address] = identity
	}
	if tx.roster != nil {
		s.roster = *tx.roster
	}
	for id, presentation := range tx.presentations {
		s.presentations[id] = presentation
	}
	s.nextID = tx.nextID
	for key := range tx.studentVotes {
		s.studentVotes[key] = struct{}{}
	}
	for id, row := range tx.outbox {
		s.outbox[id] = row
	}
	s.outboxSeq = tx.outboxSeq
}

func clonePresentation(p entities.Presentation) entities.Presentation {
	if p.FinalizedAt != nil {
		finalizedAt := *p.FinalizedAt
		p.FinalizedAt = &finalizedAt
	}
	return p
}

var _ ports.Repository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
