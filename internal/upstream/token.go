package upstream

import "context"

type tokenKey struct{}

// WithTokenは呼び出し元のbearer tokenをcontextに載せる
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}
