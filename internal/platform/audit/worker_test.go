package audit_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fintrack/internal/platform/audit"
	"fintrack/internal/platform/audit/mocks"
)

type WorkerSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	db     sqlmock.Sqlmock
	outbox *audit.Outbox
	sink   *mocks.MockSink
	dedupe *mocks.MockDeduper
	worker *audit.Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	db, mock, err := sqlmock.New()
	require.NoError(s.T(), err)
	s.db = mock
	s.outbox = audit.NewOutbox(db)
	s.sink = mocks.NewMockSink(s.ctrl)
	s.dedupe = mocks.NewMockDeduper(s.ctrl)
	logger := log.New(io.Discard, "", 0)
	s.worker = audit.NewWorker(s.outbox, s.sink, s.dedupe, logger)
}

func (s *WorkerSuite) TearDownTest() {
	s.ctrl.Finish()
	s.NoError(s.db.ExpectationsWereMet())
}

func (s *WorkerSuite) expectList(entries ...audit.Entry) {
	rows := sqlmock.NewRows([]string{"id", "action", "payload"})
	for _, e := range entries {
		rows.AddRow(e.ID, e.Action, e.Payload)
	}
	s.db.ExpectQuery(`SELECT id, action, payload\s+FROM audit_outbox\s+WHERE published_at IS NULL`).
		WillReturnRows(rows)
}

func (s *WorkerSuite) TestPublishesAndMarksBatch() {
	a := audit.Entry{ID: "e1", Action: "account.opened", Payload: []byte(`{"id":"e1"}`)}
	b := audit.Entry{ID: "e2", Action: "transaction.recorded", Payload: []byte(`{"id":"e2"}`)}
	s.expectList(a, b)

	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(false, nil)
	s.dedupe.EXPECT().Delivered(gomock.Any(), "e2").Return(false, nil)
	s.sink.EXPECT().Publish(gomock.Any(), a).Return(nil)
	s.sink.EXPECT().Publish(gomock.Any(), b).Return(nil)
	s.dedupe.EXPECT().MarkDelivered(gomock.Any(), "e1").Return(nil)
	s.dedupe.EXPECT().MarkDelivered(gomock.Any(), "e2").Return(nil)
	s.db.ExpectExec(`UPDATE audit_outbox SET published_at`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	s.NoError(s.worker.RunOnce(context.Background()))
}

func (s *WorkerSuite) TestSkipsAlreadyDeliveredButStillMarks() {
	a := audit.Entry{ID: "e1", Action: "account.opened", Payload: []byte(`{}`)}
	s.expectList(a)

	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(true, nil)
	s.db.ExpectExec(`UPDATE audit_outbox SET published_at`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.worker.RunOnce(context.Background()))
}

func (s *WorkerSuite) TestPublishFailureLeavesEntryUnmarked() {
	a := audit.Entry{ID: "e1", Action: "account.opened", Payload: []byte(`{}`)}
	s.expectList(a)

	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(false, nil)
	s.sink.EXPECT().Publish(gomock.Any(), a).Return(errors.New("broker down"))

	// Nothing delivered, so no marker is set and no mark statement runs.
	s.NoError(s.worker.RunOnce(context.Background()))
}

func (s *WorkerSuite) TestRetriesAfterFailedPublish() {
	a := audit.Entry{ID: "e1", Action: "account.opened", Payload: []byte(`{}`)}

	// First drain: the broker is down. The entry must keep its outbox row
	// and must not acquire a delivery marker.
	s.expectList(a)
	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(false, nil)
	s.sink.EXPECT().Publish(gomock.Any(), a).Return(errors.New("broker down"))
	s.NoError(s.worker.RunOnce(context.Background()))

	// Second drain: the broker is back. The entry is still unclaimed, so it
	// is published for real and only then marked.
	s.expectList(a)
	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(false, nil)
	s.sink.EXPECT().Publish(gomock.Any(), a).Return(nil)
	s.dedupe.EXPECT().MarkDelivered(gomock.Any(), "e1").Return(nil)
	s.db.ExpectExec(`UPDATE audit_outbox SET published_at`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.worker.RunOnce(context.Background()))
}

func (s *WorkerSuite) TestDedupeErrorPublishesAnyway() {
	a := audit.Entry{ID: "e1", Action: "account.opened", Payload: []byte(`{}`)}
	s.expectList(a)

	s.dedupe.EXPECT().Delivered(gomock.Any(), "e1").Return(false, errors.New("redis down"))
	s.sink.EXPECT().Publish(gomock.Any(), a).Return(nil)
	s.dedupe.EXPECT().MarkDelivered(gomock.Any(), "e1").Return(nil)
	s.db.ExpectExec(`UPDATE audit_outbox SET published_at`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.worker.RunOnce(context.Background()))
}

func (s *WorkerSuite) TestEmptyOutboxIsQuiet() {
	s.expectList()
	s.NoError(s.worker.RunOnce(context.Background()))
}
