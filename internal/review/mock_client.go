package review

import "context"

type MockClient struct {
	ReviewFn func(ctx context.Context, pullRequestURL string) (string, error)
}

func (m *MockClient) Review(
	ctx context.Context,
	pullRequestURL string,
) (string, error) {
	return m.ReviewFn(ctx, pullRequestURL)
}
