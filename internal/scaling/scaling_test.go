package scaling

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"go.uber.org/zap"
)

type fakeECS struct {
	in  *ecs.UpdateServiceInput
	err error
}

func (f *fakeECS) UpdateService(ctx context.Context, in *ecs.UpdateServiceInput, _ ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &ecs.UpdateServiceOutput{Service: &types.Service{RunningCount: 1}}, nil
}

func TestApply_SendsDesiredCount(t *testing.T) {
	f := &fakeECS{}
	s := New(f, "velaris", "web", zap.NewNop())
	if err := s.Apply(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(f.in.Cluster) != "velaris" || aws.ToString(f.in.Service) != "web" || aws.ToInt32(f.in.DesiredCount) != 2 {
		t.Fatalf("unexpected input: %+v", f.in)
	}
}

func TestApply_ZeroIsAllowed(t *testing.T) {
	f := &fakeECS{}
	if err := New(f, "c", "s", nil).Apply(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if aws.ToInt32(f.in.DesiredCount) != 0 {
		t.Fatalf("desired=%d", aws.ToInt32(f.in.DesiredCount))
	}
}

func TestApply_ReturnsWrappedError(t *testing.T) {
	cause := errors.New("ServiceNotFoundException")
	err := New(&fakeECS{err: cause}, "c", "s", nil).Apply(context.Background(), 1)
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
}

func TestApply_RejectsNegativeWithoutCalling(t *testing.T) {
	f := &fakeECS{}
	if err := New(f, "c", "s", nil).Apply(context.Background(), -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("err=%v", err)
	}
	if f.in != nil {
		t.Fatal("UpdateService should not be called")
	}
}

func TestParseEvent(t *testing.T) {
	cases := []struct {
		in   string
		want int
		err  bool
	}{
		{`{"desired_count": 3}`, 3, false},
		{`{"desired_count": "2"}`, 2, false},
		{`{"desired_count": " 0 "}`, 0, false},
		{`{"desired_count": -1}`, 0, true},
		{`{"desired_count": 1.5}`, 0, true},
		{`{"desired_count": "many"}`, 0, true},
		{`{"desired_count": 2147483647}`, math.MaxInt32, false},
		{`{"desired_count": 2147483648}`, 0, true},
		{`{"desired_count": "4294967297"}`, 0, true},
		{`{"desired_count": -2147483649}`, 0, true},
		{`{}`, 0, true},
		{`{"desired_count": null}`, 0, true},
		{`not json`, 0, true},
	}
	for _, c := range cases {
		ev, err := ParseEvent([]byte(c.in))
		if c.err {
			if err == nil {
				t.Errorf("%s: expected error", c.in)
			}
			continue
		}
		if err != nil || ev.DesiredCount != c.want {
			t.Errorf("%s: got %d, %v", c.in, ev.DesiredCount, err)
		}
	}
}

func TestParseEvent_MissingIsSentinel(t *testing.T) {
	if _, err := ParseEvent([]byte(`{}`)); !errors.Is(err, ErrMissingCount) {
		t.Fatalf("err=%v", err)
	}
}

func TestParseEvent_OverflowIsSentinel(t *testing.T) {
	for _, in := range []string{`{"desired_count": "4294967297"}`, `{"desired_count": 9223372036854775807}`} {
		if _, err := ParseEvent([]byte(in)); !errors.Is(err, ErrCountTooLarge) {
			t.Errorf("%s: err=%v", in, err)
		}
	}
}

func TestApply_RejectsCountAboveInt32WithoutCalling(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int is 32 bits on this platform")
	}
	f := &fakeECS{}
	var big int64 = math.MaxInt32 + 2
	if err := New(f, "c", "s", nil).Apply(context.Background(), int(big)); !errors.Is(err, ErrCountTooLarge) {
		t.Fatalf("err=%v", err)
	}
	if f.in != nil {
		t.Fatalf("UpdateService should not be called, got desired=%d", aws.ToInt32(f.in.DesiredCount))
	}
}

func TestApply_MaxInt32IsSentUnchanged(t *testing.T) {
	f := &fakeECS{}
	if err := New(f, "c", "s", nil).Apply(context.Background(), math.MaxInt32); err != nil {
		t.Fatal(err)
	}
	if aws.ToInt32(f.in.DesiredCount) != math.MaxInt32 {
		t.Fatalf("desired=%d", aws.ToInt32(f.in.DesiredCount))
	}
}
