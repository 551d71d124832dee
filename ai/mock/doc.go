// Package mock provides a test double for ai.Titler.
//
// MockTitler lets tests run without an LLM endpoint and gives deterministic
// titles by default.
//
//	titler := mock.NewMockTitler()
//	titler.GenerateTitleFunc = func(ctx context.Context, content string) (string, error) {
//	    return "", errors.New("offline")
//	}
//	count := titler.CallCount()
package mock
