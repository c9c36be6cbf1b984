package communication

import (
	"context"
	"errors"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("communication not found")

	typeTag = "commtype"

	parentMessageTemplate = "parent_message"
)

type (
	Repository interface {
		CreateCommunication(ctx context.Context, c Communication) (Communication, error)
		GetCommunication(ctx context.Context, id int) (Communication, error)
		QueryCommunications(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Communication, error)
		UpdateCommunication(ctx context.Context, c Communication) (Communication, error)
		DeleteCommunications(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		mailSvc     core.EmailService
	}

	parentMessageData struct {
		ParentName  string
		StudentName string
		Content     string
	}
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterChoiceValidation(validate, translator, typeTag, Types)
}

func NewService(repo Repository, studentRepo student.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, studentRepo: studentRepo, mailSvc: mailSvc}
}

func (svc *Service) getStudent(ctx context.Context, id int) (student.Student, error) {
	s, err := svc.studentRepo.GetStudent(ctx, id)
	if err != nil {
		if err == student.ErrNotFound {
			return student.Student{}, core.FieldValidationError("student_id", err)
		}
		return student.Student{}, pkgerrors.Wrap(err, "finding student")
	}
	return s, nil
}

// Create records a Communication. Emails are also sent to the parents of the student.
func (svc *Service) Create(ctx context.Context, nc NewCommunication) (Communication, error) {
	c, err := svc.repo.CreateCommunication(ctx, Communication{
		StudentID:     nc.StudentID,
		Type:          nc.Type,
		Subject:       nc.Subject,
		Content:       nc.Content,
		ContactMethod: nc.ContactMethod,
		Date:          nc.Date,
	})
	if err != nil {
		return Communication{}, err
	}

	if c.Type == TypeEmail {
		s, err := svc.getStudent(ctx, c.StudentID)
		if err != nil {
			return c, err
		}
		svc.mailSvc.SendMessages(svc.parentMessages(s, c)...)
	}
	return c, nil
}

// AddNote records a note about a student.
func (svc *Service) AddNote(ctx context.Context, studentID int, nn NewNote) (Communication, error) {
	if _, err := svc.getStudent(ctx, studentID); err != nil {
		return Communication{}, err
	}
	return svc.repo.CreateCommunication(ctx, Communication{
		StudentID:     studentID,
		Type:          TypeNote,
		Subject:       nn.Subject,
		Content:       nn.Content,
		ContactMethod: nn.ContactMethod,
		Date:          time.Now().UTC(),
	})
}

func (svc *Service) parentMessages(s student.Student, c Communication) []*core.EmailMessage {
	msgs := make([]*core.EmailMessage, 0, 2)
	for _, p := range s.Parents() {
		if p.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: p.Name, Address: p.Email}},
			Subject:      c.Subject,
			TemplateName: parentMessageTemplate,
			TemplateData: parentMessageData{
				ParentName:  p.Name,
				StudentName: s.FullName(),
				Content:     c.Content,
			},
		})
	}
	return msgs
}

func (svc *Service) GetByID(ctx context.Context, id int) (Communication, error) {
	return svc.repo.GetCommunication(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Communication, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date"}}
	}
	return svc.repo.QueryCommunications(ctx, filter, OrderingColumns.Clean(ordering)...)
}

// GetByStudent lists the communications about a student, latest first.
func (svc *Service) GetByStudent(ctx context.Context, studentID int) ([]Communication, error) {
	return svc.Query(ctx, QueryFilter{StudentIDs: []int{studentID}})
}

func (svc *Service) Update(ctx context.Context, orig Communication, uc UpdateCommunication) (Communication, error) {
	return svc.repo.UpdateCommunication(ctx, uc.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCommunications(ctx, ids...)
}
