package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores classroom state in postgres. Each Atomic call is one
// database transaction; rows it touches are locked FOR UPDATE.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Atomic(ctx context.Context, fn func(tx ports.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&repositoryTx{db: db, repo: r})
	})
}

func (r *Repository) GetIdentity(ctx context.Context, address string) (entities.Identity, bool, error) {
	return getIdentity(ctx, r.db.WithContext(ctx), r, address)
}

func (r *Repository) GetRoster(ctx context.Context) (entities.Roster, error) {
	return getRoster(r.db.WithContext(ctx), r)
}

func (r *Repository) GetPresentation(ctx context.Context, id int64) (entities.Presentation, error) {
	return getPresentation(r.db.WithContext(ctx), r, id)
}

func (r *Repository) ListPresentationIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&presentationModel{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, r.logError("consensus_repo_list_presentation_ids_failed", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (r *Repository) ListStudents(ctx context.Context) ([]entities.Student, error) {
	var rows []identityModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", entities.RoleStudent.String()).
		Order("registered_at ASC, address ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("consensus_repo_list_students_failed", err)
	}
	students := make([]entities.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, entities.Student{Address: row.Address, Name: row.Name})
	}
	return students, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("sequence ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("consensus_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("consensus_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "classroom/consensus-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("consensus repository operation failed", fields...)
	return err
}

// repositoryTx implements ports.Tx on top of an open gorm transaction.
type repositoryTx struct {
	db   *gorm.DB
	repo *Repository
}

func (tx *repositoryTx) locked() *gorm.DB {
	return tx.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (tx *repositoryTx) GetIdentity(ctx context.Context, address string) (entities.Identity, bool, error) {
	return getIdentity(ctx, tx.locked(), tx.repo, address)
}

func (tx *repositoryTx) SaveIdentity(_ context.Context, identity entities.Identity) error {
	row := identityModelFromEntity(identity)
	if row.Address == "" {
		return domainerrors.ErrInvalidInput
	}
	if err := tx.db.Create(&row).Error; err != nil {
		return identityInsertError(tx.repo, row.Address, err)
	}
	return nil
}

func (tx *repositoryTx) GetRoster(_ context.Context) (entities.Roster, error) {
	return getRoster(tx.locked(), tx.repo)
}

func (tx *repositoryTx) SaveRoster(_ context.Context, roster entities.Roster) error {
	row := rosterModel{
		ID:               rosterRowID,
		ProfessorAddress: roster.Professor,
		TASlot1:          roster.TASlots[0],
		TASlot2:          roster.TASlots[1],
	}
	err := tx.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"professor_address", "ta_slot_1", "ta_slot_2"}),
	}).Create(&row).Error
	if err != nil {
		return tx.repo.logError("consensus_repo_save_roster_failed", err)
	}
	return nil
}

func (tx *repositoryTx) NextPresentationID(_ context.Context) (int64, error) {
	seed := counterModel{Name: presentationCounter, NextValue: entities.FirstPresentationID}
	if err := tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, tx.repo.logError("consensus_repo_seed_counter_failed", err)
	}

	var counter counterModel
	if err := tx.locked().
		Where("name = ?", presentationCounter).
		First(&counter).Error; err != nil {
		return 0, tx.repo.logError("consensus_repo_lock_counter_failed", err)
	}
	id := counter.NextValue
	if err := tx.db.Model(&counterModel{}).
		Where("name = ?", presentationCounter).
		Update("next_value", id+1).Error; err != nil {
		return 0, tx.repo.logError("consensus_repo_advance_counter_failed", err, "presentation_id", id)
	}
	return id, nil
}

func (tx *repositoryTx) GetPresentation(_ context.Context, id int64) (entities.Presentation, error) {
	return getPresentation(tx.locked(), tx.repo, id)
}

func (tx *repositoryTx) SavePresentation(_ context.Context, presentation entities.Presentation) error {
	row := presentationModelFromEntity(presentation)
	err := tx.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"professor_vote",
			"ta_slot_1_vote",
			"ta_slot_2_vote",
			"student_pass",
			"student_fail",
			"result",
			"updated_at",
			"finalized_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return tx.repo.logError("consensus_repo_save_presentation_failed", err, "presentation_id", presentation.ID)
	}
	return nil
}

func (tx *repositoryTx) MarkStudentVoted(_ context.Context, presentationID int64, voter string) (bool, error) {
	row := studentVoteModel{
		PresentationID: presentationID,
		VoterAddress:   entities.NormalizeAddress(voter),
		VotedAt:        time.Now().UTC(),
	}
	create := tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if create.Error != nil {
		return false, tx.repo.logError("consensus_repo_mark_student_voted_failed", create.Error,
			"presentation_id", presentationID,
			"voter", row.VoterAddress,
		)
	}
	return create.RowsAffected > 0, nil
}

func (tx *repositoryTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return tx.repo.logError("consensus_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := tx.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return tx.repo.logError("consensus_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := tx.db.
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return tx.repo.logError("consensus_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func getIdentity(_ context.Context, db *gorm.DB, repo *Repository, address string) (entities.Identity, bool, error) {
	address = entities.NormalizeAddress(address)
	if address == "" {
		return entities.Identity{}, false, nil
	}
	var row identityModel
	err := db.Where("address = ?", address).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Identity{}, false, nil
		}
		return entities.Identity{}, false, repo.logError("consensus_repo_get_identity_failed", err, "address", address)
	}
	return row.toEntity(), true, nil
}

func getRoster(db *gorm.DB, repo *Repository) (entities.Roster, error) {
	var row rosterModel
	err := db.Where("id = ?", rosterRowID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Roster{}, nil
		}
		return entities.Roster{}, repo.logError("consensus_repo_get_roster_failed", err)
	}
	return row.toEntity(), nil
}

func getPresentation(db *gorm.DB, repo *Repository, id int64) (entities.Presentation, error) {
	var row presentationModel
	err := db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Presentation{}, domainerrors.ErrPresentationNotFound
		}
		return entities.Presentation{}, repo.logError("consensus_repo_get_presentation_failed", err, "presentation_id", id)
	}
	return row.toEntity(), nil
}

// identityInsertError reports a concurrent registration of the same address,
// which the locked read cannot see because no row existed yet.
func identityInsertError(repo *Repository, address string, err error) error {
	if isUniqueViolation(err) {
		return domainerrors.ErrAlreadyRegistered
	}
	return repo.logError("consensus_repo_save_identity_failed", err, "address", address)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Tx = (*repositoryTx)(nil)
