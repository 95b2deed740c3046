package database

import (
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type answerRepo struct {
	db dbConn
}

func newAnswerRepo(db dbConn) contract.AnswerRepo {
	return &answerRepo{db: db}
}

const answerColumns = `id, instance_id, member_id, question_index, answer_text, submitted_at`

// Upsert writes one answer keyed by (instance_id, member_id, question_index).
// A resubmission overwrites the prior text, it never appends a second row.
func (r *answerRepo) Upsert(answer *entity.Answer) error {
	query := `
		INSERT INTO answers (instance_id, member_id, question_index, answer_text, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(instance_id, member_id, question_index) DO UPDATE SET
			answer_text = excluded.answer_text,
			submitted_at = excluded.submitted_at
	`

	_, err := r.db.Exec(query,
		answer.InstanceID,
		answer.MemberID,
		answer.QuestionIndex,
		answer.Text,
		answer.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	return nil
}

func (r *answerRepo) queryAnswers(query string, args ...interface{}) ([]*entity.Answer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	var answers []*entity.Answer
	for rows.Next() {
		a := &entity.Answer{}
		err := rows.Scan(
			&a.ID,
			&a.InstanceID,
			&a.MemberID,
			&a.QuestionIndex,
			&a.Text,
			&a.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}

	return answers, nil
}

func (r *answerRepo) GetByInstance(instanceID int64) ([]*entity.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE instance_id = ?
		ORDER BY member_id, question_index ASC
	`
	return r.queryAnswers(query, instanceID)
}

func (r *answerRepo) GetByInstanceAndMember(instanceID, memberID int64) ([]*entity.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE instance_id = ? AND member_id = ?
		ORDER BY question_index ASC
	`
	return r.queryAnswers(query, instanceID, memberID)
}

func (r *answerRepo) CountByInstanceAndMember(instanceID, memberID int64) (int, error) {
	query := `SELECT COUNT(*) FROM answers WHERE instance_id = ? AND member_id = ?`

	var count int
	if err := r.db.QueryRow(query, instanceID, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}

	return count, nil
}

func (r *answerRepo) DistinctRespondents(instanceID int64) ([]int64, error) {
	query := `SELECT DISTINCT member_id FROM answers WHERE instance_id = ? ORDER BY member_id ASC`

	rows, err := r.db.Query(query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get respondents: %w", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan respondent: %w", err)
		}
		members = append(members, id)
	}

	return members, nil
}
