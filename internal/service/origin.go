package service

import "context"

type originKey struct{}

// WithOrigin attaches the caller's network address to ctx.
func WithOrigin(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, originKey{}, addr)
}

// OriginFrom returns the address stored by WithOrigin, or "".
func OriginFrom(ctx context.Context) string {
	addr, _ := ctx.Value(originKey{}).(string)
	return addr
}
