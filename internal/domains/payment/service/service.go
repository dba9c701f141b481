package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	bookingModel "courtpay/internal/domains/booking/model"
	bookingRepo "courtpay/internal/domains/booking/repository"
	paymentModel "courtpay/internal/domains/payment/model"
	"courtpay/internal/domains/payment/model/dto"
	"courtpay/internal/domains/payment/repository"
	"courtpay/shared"
	"courtpay/shared/constant"
	gDto "courtpay/shared/dto"
	"courtpay/shared/failure"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Ledger interface {
	// ListByBooking pages through the PAYMENT and REFUND rows of a booking, oldest first unless sorted.
	ListByBooking(ctx context.Context, bookingID string, params gDto.QueryParams) (dto.LedgerResponse, error)
}

type serviceImpl struct {
	repo        repository.Payment
	bookingRepo bookingRepo.Booking
	otel        otel.Otel
}

func New(repo repository.Payment, bookingRepo bookingRepo.Booking, otel otel.Otel) Ledger {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		otel:        otel,
	}
}

func (s *serviceImpl) ListByBooking(ctx context.Context, bookingID string, params gDto.QueryParams) (res dto.LedgerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.ListByBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName), bookingModel.FieldID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking for ledger")

		return res, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("booking %s not found", bookingID)) // nolint:wrapcheck
	}

	if params.SortBy == "" {
		params.SortBy = constant.FieldCreatedAt
		params.SortDir = gDto.SortDirAsc
	}

	filter := repository.ByBooking(bookingID)

	var (
		rows  []paymentModel.Payment
		total int
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		payments, err := s.repo.GetAll(groupCtx, params, filter)
		if err != nil {
			return fmt.Errorf("failed to list payments of booking %s: %w", bookingID, err)
		}

		rows = payments

		return nil
	})

	group.Go(func() error {
		count, err := s.repo.Count(groupCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to count payments of booking %s: %w", bookingID, err)
		}

		total = count

		return nil
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to read booking ledger")

		return res, err
	}

	res.FromModels(bookingID, rows, total, params.TotalPage(total))

	return res, nil
}
