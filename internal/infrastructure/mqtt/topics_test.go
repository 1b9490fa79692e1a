package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "connect event",
			got:  topics.Event("on_connect", "stable-cam-001"),
			want: "stablecam/event/on_connect/stable-cam-001",
		},
		{
			name: "disconnect event",
			got:  topics.Event("on_disconnect", "stable-cam-042"),
			want: "stablecam/event/on_disconnect/stable-cam-042",
		},
		{
			name: "camera status",
			got:  topics.Status("stable-cam-001"),
			want: "stablecam/status/stable-cam-001",
		},
		{
			name: "system status",
			got:  topics.SystemStatus(),
			want: "stablecam/system/status",
		},
		{
			name: "all events pattern",
			got:  topics.AllEvents(),
			want: "stablecam/event/+/+",
		},
		{
			name: "all statuses pattern",
			got:  topics.AllStatuses(),
			want: "stablecam/status/+",
		},
		{
			name: "all topics pattern",
			got:  topics.AllTopics(),
			want: "stablecam/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
