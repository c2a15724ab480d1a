package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"persona-agent/pkg/logger"
)

// Repository persists tool side effects (email leads, unanswered questions)
// in Neo4j. It is an optional sink: the executor treats every write as
// best-effort.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a lead store repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// RecordLead upserts a lead by email, keeping the latest name and notes
func (r *Repository) RecordLead(ctx context.Context, email, name, notes string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (l:Lead {email: $email})
		ON CREATE SET l.id = $id, l.created_at = datetime($now)
		SET l.name = $name, l.notes = $notes, l.updated_at = datetime($now)
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"email": email,
		"name":  name,
		"notes": notes,
		"id":    uuid.NewString(),
		"now":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to record lead: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to record lead: %w", err)
	}

	r.logger.Info("Lead recorded", zap.String("email", email))
	return nil
}

// RecordUnknownQuestion stores a question the agent could not answer
func (r *Repository) RecordUnknownQuestion(ctx context.Context, question string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		CREATE (q:UnknownQuestion {id: $id, text: $question, asked_at: datetime($now)})
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":       uuid.NewString(),
		"question": question,
		"now":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to record unknown question: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to record unknown question: %w", err)
	}

	r.logger.Info("Unknown question recorded", zap.Int("length", len(question)))
	return nil
}
