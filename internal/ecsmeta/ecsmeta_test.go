package ecsmeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContainerID_NoEndpointIsLocal(t *testing.T) {
	if got := ContainerID(context.Background(), "", nil); got != LocalContainer {
		t.Fatalf("got %q", got)
	}
}

func TestContainerID_TaskARN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"DockerId":"abc","Labels":{"com.amazonaws.ecs.task-arn":"arn:aws:ecs:ap-south-1:123:task/velaris/0f9e8d7c6b"}}`))
	}))
	defer srv.Close()

	if got := ContainerID(context.Background(), srv.URL, srv.Client()); got != "0f9e8d7c6b" {
		t.Fatalf("got %q", got)
	}
}

func TestContainerID_Failures(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"json":   func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{`)) },
		"label":  func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"Labels":{}}`)) },
	}
	for name, h := range handlers {
		srv := httptest.NewServer(h)
		if got := ContainerID(context.Background(), srv.URL, srv.Client()); got != UnknownContainer {
			t.Errorf("%s: got %q", name, got)
		}
		srv.Close()
	}

	if got := ContainerID(context.Background(), "http://127.0.0.1:1/v4", nil); got != UnknownContainer {
		t.Errorf("unreachable: got %q", got)
	}
}
