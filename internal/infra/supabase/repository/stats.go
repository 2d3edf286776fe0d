package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

const statsTable = "user_stats"

// statsRow mirrors one row of the user_stats table. correct_qids is stored
// as comma-delimited text.
type statsRow struct {
	ID          int    `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Correct     int    `json:"correct"`
	Wrong       int    `json:"wrong"`
	CorrectQIDs string `json:"correct_qids"`
	LastUpdate  string `json:"last_update"`
}

// StatsRepository reads and writes per-user aggregate stats in the remote
// user_stats table. One row per user, created on first write.
type StatsRepository struct {
	client *postgrest.Client
	logger *zap.Logger
}

// NewStatsRepository creates a StatsRepository over the given client.
func NewStatsRepository(client *postgrest.Client, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{client: client, logger: logger}
}

// Get returns the stored record for the user, or a zero-valued record when
// none exists yet.
func (r *StatsRepository) Get(_ context.Context, userID string) (*entities.UserStats, error) {
	data, _, err := r.client.From(statsTable).Select("*", "", false).Eq("user_id", userID).Execute()
	if err != nil {
		return nil, fmt.Errorf("select user stats: %w", err)
	}

	var rows []statsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode user stats: %w", err)
	}

	if len(rows) == 0 {
		return entities.NewUserStats(userID), nil
	}

	row := rows[0]
	return &entities.UserStats{
		UserID:      userID,
		Correct:     row.Correct,
		Wrong:       row.Wrong,
		CorrectQIDs: parseQIDs(row.CorrectQIDs),
		LastUpdate:  row.LastUpdate,
	}, nil
}

// Upsert writes the record, updating the existing row when one exists and
// inserting otherwise. This is check-then-act, not atomic: two concurrent
// writers for the same user can lose an update. Fine for a single-process
// chat workload; must move to an insert-on-conflict upsert before any
// multi-worker deployment.
func (r *StatsRepository) Upsert(_ context.Context, stats *entities.UserStats) error {
	existing, _, err := r.client.From(statsTable).Select("id", "", false).Eq("user_id", stats.UserID).Execute()
	if err != nil {
		return fmt.Errorf("check user stats: %w", err)
	}

	var ids []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(existing, &ids); err != nil {
		return fmt.Errorf("decode user stats ids: %w", err)
	}

	row := statsRow{
		UserID:      stats.UserID,
		Correct:     stats.Correct,
		Wrong:       stats.Wrong,
		CorrectQIDs: joinQIDs(stats.CorrectQIDs),
		LastUpdate:  stats.LastUpdate,
	}

	if len(ids) > 0 {
		_, _, err = r.client.From(statsTable).Update(row, "", "").Eq("user_id", stats.UserID).Execute()
		if err != nil {
			return fmt.Errorf("update user stats: %w", err)
		}
		return nil
	}

	_, _, err = r.client.From(statsTable).Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("insert user stats: %w", err)
	}
	return nil
}

// Reset deletes the stored record; the next Get returns the zero record.
func (r *StatsRepository) Reset(_ context.Context, userID string) error {
	_, _, err := r.client.From(statsTable).Delete("", "").Eq("user_id", userID).Execute()
	if err != nil {
		return fmt.Errorf("delete user stats: %w", err)
	}

	r.logger.Info("user stats reset", zap.String("user_id", userID))
	return nil
}

// Ping checks that the user_stats table is reachable.
func (r *StatsRepository) Ping(_ context.Context) error {
	if _, _, err := r.client.From(statsTable).Select("id", "exact", true).Execute(); err != nil {
		return fmt.Errorf("ping user stats: %w", err)
	}
	return nil
}

func parseQIDs(s string) []int {
	if s == "" {
		return nil
	}

	var qids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue // ignore junk left by earlier schema revisions
		}
		qids = append(qids, id)
	}
	return qids
}

func joinQIDs(qids []int) string {
	parts := make([]string, 0, len(qids))
	for _, id := range qids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
