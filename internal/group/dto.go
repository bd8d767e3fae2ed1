package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID  int64 `json:"user_id" validate:"required"`
	IsAdmin bool  `json:"is_admin"`
}

// UpdateMemberRequest represents the request to change a member's role
type UpdateMemberRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	Members   []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	JoinedAt string `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.JoinedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
