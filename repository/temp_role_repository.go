package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TempRoleRepository implements the TempRoleRepository interface.
// A guild id of 0 lists grants of every guild, which is how the scheduler recovers at startup.
type TempRoleRepository struct {
	q       Queryable
	guildID int64
}

// NewTempRoleRepositoryScoped creates a temporary role repository with a transaction and guild scope
func NewTempRoleRepositoryScoped(tx Queryable, guildID int64) *TempRoleRepository {
	return &TempRoleRepository{
		q:       tx,
		guildID: guildID,
	}
}

func (r *TempRoleRepository) Get(ctx context.Context, userID, roleID int64) (*entities.TempRoleGrant, error) {
	query := `
		SELECT user_id, guild_id, role_id, expires_at
		FROM temp_roles
		WHERE user_id = $1 AND guild_id = $2 AND role_id = $3
	`
	var grant entities.TempRoleGrant
	err := r.q.QueryRow(ctx, query, userID, r.guildID, roleID).Scan(&grant.UserID, &grant.GuildID, &grant.RoleID, &grant.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp role %d of %d: %w", roleID, userID, err)
	}
	return &grant, nil
}

// Upsert creates or moves the expiry of a grant
func (r *TempRoleRepository) Upsert(ctx context.Context, grant *entities.TempRoleGrant) error {
	guildID := grant.GuildID
	if r.guildID != 0 {
		guildID = r.guildID
	}
	query := `
		INSERT INTO temp_roles (user_id, guild_id, role_id, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, guild_id, role_id) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := r.q.Exec(ctx, query, grant.UserID, guildID, grant.RoleID, grant.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save temp role %d of %d: %w", grant.RoleID, grant.UserID, mapPgError(err, nil))
	}
	grant.GuildID = guildID
	return nil
}

// DeleteIfExpired removes a grant only if it expired by now, so an extension racing
// with the expiry keeps the role
func (r *TempRoleRepository) DeleteIfExpired(ctx context.Context, userID, roleID int64, now time.Time) (bool, error) {
	query := `
		DELETE FROM temp_roles
		WHERE user_id = $1 AND guild_id = $2 AND role_id = $3 AND expires_at <= $4
	`
	tag, err := r.q.Exec(ctx, query, userID, r.guildID, roleID, now)
	if err != nil {
		return false, fmt.Errorf("failed to delete temp role %d of %d: %w", roleID, userID, mapPgError(err, nil))
	}
	return tag.RowsAffected() > 0, nil
}

// GetAll returns every grant of the guild, or of all guilds when unscoped
func (r *TempRoleRepository) GetAll(ctx context.Context) ([]*entities.TempRoleGrant, error) {
	query := `
		SELECT user_id, guild_id, role_id, expires_at
		FROM temp_roles
		WHERE ` + guildFilter + `
		ORDER BY expires_at ASC
	`
	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list temp roles: %w", err)
	}
	defer rows.Close()

	var grants []*entities.TempRoleGrant
	for rows.Next() {
		var grant entities.TempRoleGrant
		if err := rows.Scan(&grant.UserID, &grant.GuildID, &grant.RoleID, &grant.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan temp role: %w", err)
		}
		grants = append(grants, &grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate temp roles: %w", err)
	}
	return grants, nil
}
