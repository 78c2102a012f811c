package provider

import "context"

// Adapt exposes inner, which speaks the wire types BI and BO, as a
// RequestResponse over I and O. toWire may reject an input, in which case
// inner is not called. fromWire checks and converts the reply. An empty
// name keeps inner's name.
func Adapt[I, O, BI, BO any](
	inner RequestResponse[BI, BO],
	name string,
	toWire func(ctx context.Context, input I) (BI, error),
	fromWire func(reply BO) (O, error),
) RequestResponse[I, O] {
	if name == "" {
		name = inner.Name()
	}
	return &adapter[I, O, BI, BO]{name: name, inner: inner, toWire: toWire, fromWire: fromWire}
}

type adapter[I, O, BI, BO any] struct {
	name     string
	inner    RequestResponse[BI, BO]
	toWire   func(context.Context, I) (BI, error)
	fromWire func(BO) (O, error)
}

func (a *adapter[I, O, BI, BO]) Name() string                         { return a.name }
func (a *adapter[I, O, BI, BO]) IsAvailable(ctx context.Context) bool { return a.inner.IsAvailable(ctx) }

func (a *adapter[I, O, BI, BO]) Execute(ctx context.Context, input I) (out O, err error) {
	wire, err := a.toWire(ctx, input)
	if err != nil {
		return out, err
	}
	reply, err := a.inner.Execute(ctx, wire)
	if err != nil {
		return out, err
	}
	return a.fromWire(reply)
}
