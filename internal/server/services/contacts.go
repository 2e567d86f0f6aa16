package services

import (
	"context"
	"database/sql"
	"fmt"
	netmail "net/mail"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/server/models"
	"github.com/mkravets/contactdesk/internal/server/repositories/repomanager"
)

// PhonePrefix is the fixed international prefix phone numbers are
// normalized to. Inputs must be exactly ten digits before normalization.
const PhonePrefix = "+38"

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// seam for birthday-window tests
var nowFunc = time.Now

// ContactInput carries the user-supplied attributes of a contact before
// validation. DateOfBirth is "YYYY-MM-DD".
type ContactInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
}

// validate checks field constraints and returns the normalized attributes.
// Everything here runs before the store is touched.
func (in *ContactInput) validate() (*models.Contact, error) {
	// length limits count characters, not bytes
	if n := utf8.RuneCountInString(in.FirstName); n < 3 || n > 25 {
		return nil, fmt.Errorf("%w: first_name must be 3-25 characters", common.ErrorValidation)
	}
	if n := utf8.RuneCountInString(in.LastName); n < 3 || n > 50 {
		return nil, fmt.Errorf("%w: last_name must be 3-50 characters", common.ErrorValidation)
	}
	if _, err := netmail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if !phonePattern.MatchString(in.Phone) {
		return nil, fmt.Errorf("%w: phone must be exactly 10 digits", common.ErrorValidation)
	}
	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", common.ErrorValidation)
	}

	return &models.Contact{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       PhonePrefix + in.Phone,
		DateOfBirth: dob,
	}, nil
}

// ContactService validates input and drives the contact repository. Every
// operation is scoped to the authenticated user passed by the caller.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repomanager: m}
}

func (s *ContactService) List(ctx context.Context, user *models.User, limit, offset int) ([]*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	return repo.List(ctx, user.ID, limit, offset)
}

func (s *ContactService) Get(ctx context.Context, id int64, user *models.User) (*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	return repo.GetByID(ctx, id, user.ID)
}

func (s *ContactService) Create(ctx context.Context, in *ContactInput, user *models.User) (*models.Contact, error) {
	contact, err := in.validate()
	if err != nil {
		return nil, err
	}
	contact.UserID = user.ID

	repo := s.repomanager.Contacts(s.db)
	return repo.Create(ctx, contact)
}

func (s *ContactService) Update(ctx context.Context, id int64, in *ContactInput, user *models.User) (*models.Contact, error) {
	contact, err := in.validate()
	if err != nil {
		return nil, err
	}
	contact.ID = id
	contact.UserID = user.ID

	repo := s.repomanager.Contacts(s.db)
	return repo.Update(ctx, contact)
}

func (s *ContactService) Delete(ctx context.Context, id int64, user *models.User) (*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	return repo.Delete(ctx, id, user.ID)
}

// Search applies exact-match filters on first_name, last_name and email.
// An empty filter set degrades to List.
func (s *ContactService) Search(ctx context.Context, filters map[string]string, user *models.User, limit, offset int) ([]*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	return repo.Search(ctx, user.ID, filters, limit, offset)
}

// UpcomingBirthdays returns the user's contacts whose birthday falls in
// the inclusive 7-day window starting today.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, user *models.User) ([]*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	return repo.UpcomingBirthdays(ctx, user.ID, nowFunc())
}
