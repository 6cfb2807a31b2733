package push

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

var errUnregistered = errors.New("registration-token-not-registered")

type multicastStub struct {
	batches [][]string
	failOn  int
	allGone bool
	calls   int
}

func (m *multicastStub) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	m.calls++
	m.batches = append(m.batches, message.Tokens)
	if m.calls == m.failOn {
		return nil, errors.New("fcm unavailable")
	}
	resp := &messaging.BatchResponse{}
	for i := range message.Tokens {
		if m.allGone {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: errUnregistered})
			continue
		}
		if i == 0 {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: errors.New("quota")})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + strconv.Itoa(i)})
	}
	return resp, nil
}

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "tok-" + strconv.Itoa(i)
	}
	return out
}

func TestFCMSender_Send(t *testing.T) {
	t.Run("splits tokens into batches", func(t *testing.T) {
		client := &multicastStub{}
		sender := newFCMSender(client, nil)

		report, err := sender.Send(context.Background(), Message{Title: "t", Body: "b", Tokens: tokens(MaxTokensPerBatch + 3)})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if len(client.batches) != 2 || len(client.batches[0]) != MaxTokensPerBatch || len(client.batches[1]) != 3 {
			t.Fatalf("unexpected batches: %d", len(client.batches))
		}
		if report.Success != MaxTokensPerBatch+3-2 || report.Failure != 2 {
			t.Fatalf("unexpected report %+v", report)
		}
		if len(report.Unregistered) != 0 {
			t.Fatalf("expected no unregistered tokens, got %v", report.Unregistered)
		}
	})

	t.Run("counts a failed batch and keeps sending", func(t *testing.T) {
		client := &multicastStub{failOn: 1}
		sender := newFCMSender(client, nil)

		report, err := sender.Send(context.Background(), Message{Tokens: tokens(MaxTokensPerBatch + 2)})
		if err != nil {
			t.Fatalf("expected partial success without error, got %v", err)
		}
		if report.Failure != MaxTokensPerBatch+1 || report.Success != 1 {
			t.Fatalf("unexpected report %+v", report)
		}
	})

	t.Run("returns the error when nothing was delivered", func(t *testing.T) {
		client := &multicastStub{failOn: 1}
		sender := newFCMSender(client, nil)

		report, err := sender.Send(context.Background(), Message{Tokens: tokens(2)})
		if err == nil {
			t.Fatalf("expected error")
		}
		if report.Failure != 2 {
			t.Fatalf("unexpected report %+v", report)
		}
	})

	t.Run("reports unregistered tokens alongside the error", func(t *testing.T) {
		client := &multicastStub{failOn: 2, allGone: true}
		sender := newFCMSender(client, nil)
		sender.unregistered = func(err error) bool { return errors.Is(err, errUnregistered) }

		report, err := sender.Send(context.Background(), Message{Tokens: tokens(MaxTokensPerBatch + 1)})
		if err == nil {
			t.Fatalf("expected error when nothing was delivered")
		}
		if report.Success != 0 || report.Failure != MaxTokensPerBatch+1 {
			t.Fatalf("unexpected report %+v", report)
		}
		if len(report.Unregistered) != MaxTokensPerBatch || report.Unregistered[0] != "tok-0" {
			t.Fatalf("expected first batch to be reported unregistered, got %d tokens", len(report.Unregistered))
		}
	})

	t.Run("no tokens is a no-op", func(t *testing.T) {
		client := &multicastStub{}
		report, err := newFCMSender(client, nil).Send(context.Background(), Message{})
		if err != nil || client.calls != 0 || report.Success != 0 || report.Failure != 0 {
			t.Fatalf("expected no-op, got %+v, %v, %d calls", report, err, client.calls)
		}
	})
}

func TestNewFCMSenderRequiresCredentials(t *testing.T) {
	if _, err := NewFCMSender(context.Background(), "", nil); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestDisabledSend(t *testing.T) {
	report, err := Disabled{}.Send(context.Background(), Message{Tokens: tokens(3)})
	if err != nil || report.Success != 0 || report.Failure != 0 {
		t.Fatalf("expected empty report, got %+v, %v", report, err)
	}
}
