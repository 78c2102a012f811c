package provider

import (
	"context"
	"errors"
	"testing"
)

type wireRequest struct {
	PCM  []int16
	Rate int
}

type wireResponse struct {
	Vector []float64
}

type stubBackend struct {
	available bool
	calls     int
	execFn    func(ctx context.Context, in wireRequest) (wireResponse, error)
}

func (s *stubBackend) Name() string                       { return "wire" }
func (s *stubBackend) IsAvailable(_ context.Context) bool { return s.available }
func (s *stubBackend) Execute(ctx context.Context, in wireRequest) (wireResponse, error) {
	s.calls++
	return s.execFn(ctx, in)
}

func toWire(_ context.Context, samples []float32) (wireRequest, error) {
	if len(samples) == 0 {
		return wireRequest{}, errors.New("empty input")
	}
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = int16(s * 100)
	}
	return wireRequest{PCM: pcm, Rate: 16000}, nil
}

func fromWire(out wireResponse) ([]float32, error) {
	if len(out.Vector) == 0 {
		return nil, errors.New("empty vector")
	}
	v := make([]float32, len(out.Vector))
	for i, x := range out.Vector {
		v[i] = float32(x)
	}
	return v, nil
}

func TestAdapt(t *testing.T) {
	backendErr := errors.New("sidecar down")
	tests := []struct {
		name      string
		input     []float32
		execFn    func(ctx context.Context, in wireRequest) (wireResponse, error)
		want      int
		wantErr   error
		wantCalls int
	}{
		{
			name:  "maps both directions",
			input: []float32{0.5, -0.25},
			execFn: func(_ context.Context, in wireRequest) (wireResponse, error) {
				return wireResponse{Vector: []float64{float64(in.PCM[0]), float64(in.PCM[1]), float64(in.Rate)}}, nil
			},
			want:      3,
			wantCalls: 1,
		},
		{
			name:      "mapIn error skips backend",
			input:     nil,
			wantErr:   errors.New("empty input"),
			wantCalls: 0,
		},
		{
			name:  "backend error is returned as-is",
			input: []float32{1},
			execFn: func(context.Context, wireRequest) (wireResponse, error) {
				return wireResponse{}, backendErr
			},
			wantErr:   backendErr,
			wantCalls: 1,
		},
		{
			name:  "mapOut error",
			input: []float32{1},
			execFn: func(context.Context, wireRequest) (wireResponse, error) {
				return wireResponse{}, nil
			},
			wantErr:   errors.New("empty vector"),
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{available: true, execFn: tt.execFn}
			adapted := Adapt[[]float32, []float32, wireRequest, wireResponse](backend, "embedder", toWire, fromWire)

			got, err := adapted.Execute(context.Background(), tt.input)
			if tt.wantErr != nil {
				if err == nil || err.Error() != tt.wantErr.Error() {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			if backend.calls != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", backend.calls, tt.wantCalls)
			}
		})
	}
}

func TestAdapt_NameAndAvailability(t *testing.T) {
	backend := &stubBackend{available: false}
	adapted := Adapt[[]float32, []float32, wireRequest, wireResponse](backend, "embedder", toWire, fromWire)
	if adapted.Name() != "embedder" {
		t.Errorf("Name() = %q, want embedder", adapted.Name())
	}
	if adapted.IsAvailable(context.Background()) {
		t.Error("expected availability to delegate to the backend")
	}
}

func TestAdapt_ComposesWithMiddleware(t *testing.T) {
	backend := &stubBackend{available: true, execFn: func(context.Context, wireRequest) (wireResponse, error) {
		return wireResponse{Vector: []float64{1}}, nil
	}}
	var seen int
	count := func(inner RequestResponse[wireRequest, wireResponse]) RequestResponse[wireRequest, wireResponse] {
		return Func(inner.Name(), func(ctx context.Context, in wireRequest) (wireResponse, error) {
			seen++
			return inner.Execute(ctx, in)
		})
	}

	adapted := Adapt[[]float32, []float32, wireRequest, wireResponse](Chain(count)(backend), "embedder", toWire, fromWire)
	if _, err := adapted.Execute(context.Background(), []float32{0.1}); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Errorf("middleware saw %d calls, want 1", seen)
	}
}
