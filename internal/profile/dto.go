package profile

import (
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
)

// NOTE: DTOs travel from usecase/handler to the presentation layer.
type ProfileDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	ShortID   string `json:"short_id"`
}

func ToDTO(p *model.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:        p.ID,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		ShortID:   p.ShortID,
	}
}
