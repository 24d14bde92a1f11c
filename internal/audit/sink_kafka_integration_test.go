//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Soozey/MADAVOLA/internal/audit"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/testutil/containers"
)

func TestKafkaSinkPublishesTrail(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "audit-trail-sink-test"
	sink, err := audit.NewKafkaSink(ctx, []string{broker}, topic)
	if err != nil {
		t.Fatalf("failed to create kafka sink: %v", err)
	}
	defer sink.Close()

	actor := id.NewActorID()
	lotID := id.NewLotID()
	events := []audit.Event{
		{Timestamp: time.Now().UTC(), ActorID: actor, Action: audit.ActionLotCreated, EntityType: "lot", EntityID: lotID.String()},
		{Timestamp: time.Now().UTC(), ActorID: actor, Action: audit.ActionLotSplit, EntityType: "lot", EntityID: lotID.String()},
	}
	for _, event := range events {
		if err := sink.Append(ctx, event); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		t.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	var got []audit.Event
	for len(got) < len(events) {
		fetches := consumer.PollFetches(ctx)
		if err := fetches.Err(); err != nil {
			t.Fatalf("poll failed with %d of %d events: %v", len(got), len(events), err)
		}
		fetches.EachRecord(func(record *kgo.Record) {
			if string(record.Key) != "lot:"+lotID.String() {
				t.Fatalf("unexpected record key %q", record.Key)
			}
			var event audit.Event
			if err := json.Unmarshal(record.Value, &event); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			got = append(got, event)
		})
	}

	// Same key means same partition, so order is preserved.
	if got[0].Action != audit.ActionLotCreated || got[1].Action != audit.ActionLotSplit {
		t.Fatalf("trail out of order: %v, %v", got[0].Action, got[1].Action)
	}
	if got[0].ActorID != actor {
		t.Fatalf("expected actor %s, got %s", actor, got[0].ActorID)
	}
}
