package database

import (
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type reminderRepo struct {
	db dbConn
}

func newReminderRepo(db dbConn) contract.ReminderRepo {
	return &reminderRepo{db: db}
}

// ClaimDelivery records a (instance, member, tier) send with insert-or-ignore.
// Returns false when a prior sweep already claimed this tier for the member.
func (r *reminderRepo) ClaimDelivery(d *entity.ReminderDelivery) (bool, error) {
	query := `
		INSERT OR IGNORE INTO reminder_deliveries (instance_id, member_id, tier, sent_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, d.InstanceID, d.MemberID, d.Tier, d.SentAt)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder delivery: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *reminderRepo) HighestTierSent(instanceID, memberID int64) (string, error) {
	query := `
		SELECT tier FROM reminder_deliveries
		WHERE instance_id = ? AND member_id = ?
	`

	rows, err := r.db.Query(query, instanceID, memberID)
	if err != nil {
		return "", fmt.Errorf("failed to get sent tiers: %w", err)
	}
	defer rows.Close()

	highest := ""
	for rows.Next() {
		var tier string
		if err := rows.Scan(&tier); err != nil {
			return "", fmt.Errorf("failed to scan tier: %w", err)
		}
		if domain.TierRank[tier] > domain.TierRank[highest] {
			highest = tier
		}
	}

	return highest, nil
}
