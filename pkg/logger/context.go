package logger

import "context"

type requestIDKey struct{}

// WithRequestID 将请求追踪 ID 写入 context，供 Service 层日志与审计使用
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 读取 context 中的请求追踪 ID，不存在时返回空串
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
