package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/chatprofiles"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
)

// SaveChatProfileInput is a chat-profile save request. Skills is the raw
// comma-delimited list. Document, when set, is stored before the upsert and
// takes precedence over DocumentRef.
type SaveChatProfileInput struct {
	Name          string
	Qualification string
	Phone         string
	DOB           string
	About         string
	Skills        string
	ProfilePhoto  string
	DocumentRef   string
	Document      *storage.Upload
}

type ChatProfileService struct {
	profiles chatprofiles.Repository
	files    storage.FileStore
	store    storeCall
	log      logging.Logger
}

func NewChatProfileService(repo chatprofiles.Repository, files storage.FileStore,
	storeTimeout time.Duration, log logging.Logger) *ChatProfileService {
	log = log.With("module", "chat_profile_service")
	return &ChatProfileService{
		profiles: repo,
		files:    files,
		store:    storeCall{timeout: storeTimeout, log: log},
		log:      log,
	}
}

// SplitSkills splits a comma-delimited list, trimming tokens and dropping
// empty ones. Order is preserved.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// Save creates or replaces the chat profile for in.Phone in one upsert.
func (s *ChatProfileService) Save(ctx context.Context, in SaveChatProfileInput) (*models.ChatProfile, error) {
	if m := missing(
		[2]string{"name", in.Name},
		[2]string{"qualification", in.Qualification},
		[2]string{"phone", in.Phone},
		[2]string{"dob", in.DOB},
		[2]string{"about", in.About},
		[2]string{"skills", in.Skills},
	); len(m) > 0 {
		return nil, common.NewValidationError("All fields are required", m...)
	}

	skills := SplitSkills(in.Skills)
	if len(skills) == 0 {
		return nil, common.NewValidationError("At least one skill is required", "skills")
	}

	dob, err := models.ParseDate(in.DOB)
	if err != nil {
		return nil, common.NewValidationError("Invalid date of birth", "dob")
	}

	profile := &models.ChatProfile{
		Name:          strings.TrimSpace(in.Name),
		Qualification: strings.TrimSpace(in.Qualification),
		Phone:         strings.TrimSpace(in.Phone),
		DOB:           dob,
		About:         strings.TrimSpace(in.About),
		Skills:        skills,
	}
	if photo := strings.TrimSpace(in.ProfilePhoto); photo != "" {
		profile.ProfilePhoto = &photo
	}

	if in.Document != nil {
		ref, err := s.files.Save(ctx, in.Document)
		if err != nil {
			return nil, s.store.classify(ctx, "save document", err)
		}
		profile.Document = &ref
	} else if ref := strings.TrimSpace(in.DocumentRef); ref != "" {
		profile.Document = &ref
	}

	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	stored, err := s.profiles.Upsert(cctx, profile)
	if err != nil {
		return nil, s.store.classify(ctx, "upsert chat profile", err)
	}

	s.log.Info(ctx, "chat profile saved", "profile_id", stored.ID)
	return stored, nil
}
