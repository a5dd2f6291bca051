package metrics

import "github.com/terra-clan/interview-console/internal/notify"

// ToastSink counts notifications as they come and go
type ToastSink struct{}

func (ToastSink) ToastAdded(t notify.Toast) {
	ObserveToast(string(t.Kind))
}

func (ToastSink) ToastDismissed(string) {
	ObserveDismissal()
}
