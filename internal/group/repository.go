package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/podplanner/internal/database"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new group into the database
func (r *Repository) Create(ctx context.Context, name string) (*Group, error) {
	query := `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`

	group := &Group{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, name).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, name, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListByUserID retrieves the groups a user belongs to, in the order they joined
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	conn := database.Conn(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM group_members WHERE user_id = $1`
	if err := conn.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY gm.id
		LIMIT $2 OFFSET $3
	`

	rows, err := conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, total, nil
}

// Update modifies an existing group
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name)
		WHERE id = $1
		RETURNING id, name, created_at
	`

	group := &Group{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, id, req.Name).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// AddMember adds a user to a group
func (r *Repository) AddMember(ctx context.Context, groupID, userID int64, isAdmin bool) (*GroupMember, error) {
	query := `
		INSERT INTO group_members (group_id, user_id, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, user_id, is_admin, joined_at
	`

	member := &GroupMember{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, groupID, userID, isAdmin).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.IsAdmin,
		&member.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

const memberSelect = `
	SELECT gm.id, gm.group_id, gm.user_id, gm.is_admin, gm.joined_at, u.username, u.email
	FROM group_members gm
	JOIN users u ON gm.user_id = u.id
`

// GetMembers retrieves all members of a group
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	query := memberSelect + `WHERE gm.group_id = $1 ORDER BY gm.id`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*GroupMember
	for rows.Next() {
		member := &GroupMember{}
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.IsAdmin,
			&member.JoinedAt,
			&member.Username,
			&member.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

// GetMember retrieves a user's membership in a group
func (r *Repository) GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	query := memberSelect + `WHERE gm.group_id = $1 AND gm.user_id = $2`
	return r.getMember(ctx, query, groupID, userID)
}

// GetMemberByID retrieves a membership row of a group by its own ID
func (r *Repository) GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error) {
	query := memberSelect + `WHERE gm.group_id = $1 AND gm.id = $2`
	return r.getMember(ctx, query, groupID, memberID)
}

func (r *Repository) getMember(ctx context.Context, query string, args ...any) (*GroupMember, error) {
	member := &GroupMember{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.IsAdmin,
		&member.JoinedAt,
		&member.Username,
		&member.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// UpdateMemberRole sets the admin flag of a membership
func (r *Repository) UpdateMemberRole(ctx context.Context, groupID, memberID int64, isAdmin bool) (*GroupMember, error) {
	query := `
		UPDATE group_members
		SET is_admin = $3
		WHERE group_id = $1 AND id = $2
		RETURNING id
	`

	var id int64
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, groupID, memberID, isAdmin).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return r.GetMemberByID(ctx, groupID, id)
}
