//go:build integration

package audit_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"fintrack/internal/platform/audit"
	"fintrack/pkg/testutil/containers"
)

const workerTestTopic = "fintrack.audit.test"

type WorkerIntegrationSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	redis    *containers.RedisContainer
	outbox   *audit.Outbox
	sink     *audit.Kafka
	dedupe   *audit.RedisDeduper
}

func TestWorkerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerIntegrationSuite))
}

func (s *WorkerIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.redpanda = containers.NewRedpandaContainer(s.T())
	s.redis = containers.NewRedisContainer(s.T())

	s.outbox = audit.NewOutbox(s.postgres.DB)
	s.dedupe = audit.NewRedisDeduper(s.redis.Client, time.Hour)

	sink, err := audit.NewKafka(s.ctx, s.redpanda.Brokers, workerTestTopic)
	s.Require().NoError(err)
	s.sink = sink
}

func (s *WorkerIntegrationSuite) TearDownSuite() {
	s.sink.Close()
	_ = s.redis.Client.Close()
	_ = s.postgres.DB.Close()
	ctx := context.Background()
	_ = s.redis.Container.Terminate(ctx)
	_ = s.redpanda.Container.Terminate(ctx)
	_ = s.postgres.Container.Terminate(ctx)
}

func (s *WorkerIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *WorkerIntegrationSuite) newWorker() *audit.Worker {
	return audit.NewWorker(s.outbox, s.sink, s.dedupe, log.New(io.Discard, "", 0))
}

// consume reads records from the test topic until want keys arrive or the
// deadline passes.
func (s *WorkerIntegrationSuite) consume(want int, deadline time.Duration) map[string]struct{} {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(workerTestTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	keys := make(map[string]struct{})
	ctx, cancel := context.WithTimeout(s.ctx, deadline)
	defer cancel()
	for len(keys) < want {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}
		fetches.EachRecord(func(r *kgo.Record) {
			keys[string(r.Key)] = struct{}{}
		})
	}
	return keys
}

func (s *WorkerIntegrationSuite) TestDrainsOutboxToBroker() {
	first := audit.NewEvent(audit.ActionUserRegistered, "user-1", "system")
	second := audit.NewEvent(audit.ActionAccountOpened, "account-1", "user-1")
	s.Require().NoError(s.outbox.Append(s.ctx, first))
	s.Require().NoError(s.outbox.Append(s.ctx, second))

	s.Require().NoError(s.newWorker().RunOnce(s.ctx))

	keys := s.consume(2, 15*time.Second)
	s.Contains(keys, first.ID.String())
	s.Contains(keys, second.ID.String())

	remaining, err := s.outbox.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(remaining)
}

func (s *WorkerIntegrationSuite) TestSecondPassDeliversNothingNew() {
	event := audit.NewEvent(audit.ActionBudgetPlanned, "budget-1", "user-1")
	s.Require().NoError(s.outbox.Append(s.ctx, event))

	worker := s.newWorker()
	s.Require().NoError(worker.RunOnce(s.ctx))
	s.Require().NoError(worker.RunOnce(s.ctx))

	remaining, err := s.outbox.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(remaining)
}

func (s *WorkerIntegrationSuite) TestClaimedMarkerSkipsPublish() {
	event := audit.NewEvent(audit.ActionUserDeactivated, "user-9", "admin-1")
	s.Require().NoError(s.outbox.Append(s.ctx, event))

	// Simulate a crash after publish but before mark: the marker exists, the
	// outbox row does not know yet.
	s.Require().NoError(s.dedupe.MarkDelivered(s.ctx, event.ID.String()))

	delivered, err := s.dedupe.Delivered(s.ctx, event.ID.String())
	s.Require().NoError(err)
	s.Require().True(delivered)

	s.Require().NoError(s.newWorker().RunOnce(s.ctx))

	keys := s.consume(1, 3*time.Second)
	s.NotContains(keys, event.ID.String())

	remaining, err := s.outbox.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(remaining)
}
