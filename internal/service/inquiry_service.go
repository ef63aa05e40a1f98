package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

// InquirySender forwards inquiries to the studio inbox.
type InquirySender interface {
	SendInquiry(ctx context.Context, inq *models.Inquiry) error
}

type InquiryService interface {
	Send(ctx context.Context, inq *models.Inquiry) error
}

type inquiryService struct {
	sender   InquirySender
	validate *validator.Validate
	logger   *zap.Logger
}

func NewInquiryService(sender InquirySender, logger *zap.Logger) InquiryService {
	return &inquiryService{sender: sender, validate: newValidator(), logger: logger.Named("inquiry")}
}

func (s *inquiryService) Send(ctx context.Context, inq *models.Inquiry) error {
	inq.Name = strings.TrimSpace(inq.Name)
	inq.Email = strings.TrimSpace(inq.Email)
	inq.Message = strings.TrimSpace(inq.Message)
	if err := s.validate.Struct(inq); err != nil {
		return validationError(err)
	}
	if inq.Kind == models.InquiryBirthdayParty && inq.PartyDate == "" {
		return invalid("partyDate", "please choose a party date")
	}

	if err := s.sender.SendInquiry(ctx, inq); err != nil {
		s.logger.Error("inquiry forward failed", zap.String("kind", string(inq.Kind)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.logger.Info("inquiry forwarded", zap.String("kind", string(inq.Kind)))
	return nil
}
