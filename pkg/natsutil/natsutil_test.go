package natsutil

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{Subject: "test"}
	c := (*natsHeaderCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Errorf("Get on empty header = %q", got)
	}
	if keys := c.Keys(); keys != nil {
		t.Errorf("Keys on empty header = %v", keys)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get = %q", got)
	}
	if msg.Header.Get("traceparent") != "00-abc-def-01" {
		t.Error("value not visible on the underlying message")
	}

	c.Set("baggage", "k=v")
	if len(c.Keys()) != 2 {
		t.Errorf("Keys = %v", c.Keys())
	}
}

func TestJSONHandler(t *testing.T) {
	type extractRequest struct {
		ApplianceID string `json:"appliance_id"`
	}

	var got []extractRequest
	handler := jsonHandler(func(_ context.Context, req extractRequest) {
		got = append(got, req)
	})

	handler(&nats.Msg{Data: []byte(`{"appliance_id":"app-1"}`)})
	handler(&nats.Msg{Data: []byte(`{not json`)})
	handler(&nats.Msg{Data: []byte(`{"appliance_id":"app-2"}`)})

	if len(got) != 2 {
		t.Fatalf("delivered = %d, want 2 (malformed dropped)", len(got))
	}
	if got[0].ApplianceID != "app-1" || got[1].ApplianceID != "app-2" {
		t.Errorf("got = %v", got)
	}
}
