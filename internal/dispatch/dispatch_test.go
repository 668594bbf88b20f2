package dispatch

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edgard/tgrelay/internal/errors"
)

var errForbidden = stderrors.New("telegram api responded with status 403")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       Request
		mockSetup func(*MockMessageSender)
		want      Result
	}{
		{
			name:      "empty recipient list",
			req:       Request{Message: "hi", FormatMode: "HTML", Recipients: []int64{}},
			mockSetup: func(m *MockMessageSender) {},
			want:      Result{Successful: []int64{}, Failed: []int64{}},
		},
		{
			name:      "nil recipient list",
			req:       Request{Message: "hi"},
			mockSetup: func(m *MockMessageSender) {},
			want:      Result{Successful: []int64{}, Failed: []int64{}},
		},
		{
			name: "all succeed in input order",
			req:  Request{Message: "hi", FormatMode: "HTML", Recipients: []int64{3, 1, 2}},
			mockSetup: func(m *MockMessageSender) {
				m.On("SendMessage", mock.Anything, mock.AnythingOfType("int64"), "hi", "HTML").Return(nil)
			},
			want: Result{Successful: []int64{3, 1, 2}, Failed: []int64{}},
		},
		{
			name: "partial failure",
			req:  Request{Message: "hi", FormatMode: "MarkdownV2", Recipients: []int64{111, 222}},
			mockSetup: func(m *MockMessageSender) {
				m.On("SendMessage", mock.Anything, int64(111), "hi", "MarkdownV2").Return(nil)
				m.On("SendMessage", mock.Anything, int64(222), "hi", "MarkdownV2").
					Return(errors.NewSendError(222, errForbidden))
			},
			want: Result{Successful: []int64{111}, Failed: []int64{222}},
		},
		{
			name: "all fail",
			req:  Request{Message: "hi", FormatMode: "MarkdownV2", Recipients: []int64{5, 6}},
			mockSetup: func(m *MockMessageSender) {
				m.On("SendMessage", mock.Anything, mock.AnythingOfType("int64"), "hi", "MarkdownV2").
					Return(errForbidden)
			},
			want: Result{Successful: []int64{}, Failed: []int64{5, 6}},
		},
		{
			name: "duplicates are attempted per occurrence",
			req:  Request{Message: "hi", FormatMode: "MarkdownV2", Recipients: []int64{7, 8, 7}},
			mockSetup: func(m *MockMessageSender) {
				m.On("SendMessage", mock.Anything, int64(7), "hi", "MarkdownV2").Return(nil).Times(2)
				m.On("SendMessage", mock.Anything, int64(8), "hi", "MarkdownV2").Return(errForbidden).Once()
			},
			want: Result{Successful: []int64{7, 7}, Failed: []int64{8}},
		},
		{
			name: "empty format mode defaults to MarkdownV2",
			req:  Request{Message: "*bold*", Recipients: []int64{9}},
			mockSetup: func(m *MockMessageSender) {
				m.On("SendMessage", mock.Anything, int64(9), "*bold*", DefaultFormatMode).Return(nil).Once()
			},
			want: Result{Successful: []int64{9}, Failed: []int64{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sender := &MockMessageSender{}
			tc.mockSetup(sender)

			got := NewDispatcher(sender, testLogger()).Dispatch(context.Background(), tc.req)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.req.Recipients), len(got.Successful)+len(got.Failed))
			sender.AssertExpectations(t)
			sender.AssertNumberOfCalls(t, "SendMessage", len(tc.req.Recipients))
		})
	}
}

// recordingSender tracks call order and verifies that calls never overlap.
type recordingSender struct {
	inFlight int
	maxSeen  int
	order    []int64
	fail     map[int64]bool
}

func (s *recordingSender) SendMessage(_ context.Context, recipientID int64, _, _ string) error {
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	defer func() { s.inFlight-- }()

	s.order = append(s.order, recipientID)
	if s.fail[recipientID] {
		return errForbidden
	}
	return nil
}

func TestDispatcher_Dispatch_Sequential(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{fail: map[int64]bool{2: true, 4: true}}
	recipients := []int64{1, 2, 3, 4, 5}

	got := NewDispatcher(sender, testLogger()).Dispatch(context.Background(), Request{
		Message:    "hi",
		Recipients: recipients,
	})

	assert.Equal(t, recipients, sender.order)
	assert.Equal(t, 1, sender.maxSeen)
	assert.Equal(t, []int64{1, 3, 5}, got.Successful)
	assert.Equal(t, []int64{2, 4}, got.Failed)
}

func TestDispatcher_Dispatch_NoEarlyExitOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &MockMessageSender{}
	sender.On("SendMessage", ctx, mock.AnythingOfType("int64"), "hi", DefaultFormatMode).Return(context.Canceled)

	got := NewDispatcher(sender, nil).Dispatch(ctx, Request{Message: "hi", Recipients: []int64{1, 2}})

	assert.Equal(t, Result{Successful: []int64{}, Failed: []int64{1, 2}}, got)
	sender.AssertNumberOfCalls(t, "SendMessage", 2)
}
