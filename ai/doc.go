// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ai provides the optional AI collaborator used by memosync:
// generating a title for a memory that was saved without one.
//
// The Titler interface keeps the use cases independent of any model
// provider. Implementations:
//
//   - ai/openai: OpenAI-compatible chat APIs through langchaingo
//   - ai/mock: test double for unit tests
//
// Public constructors (openai.NewTitler) return the interface type; the mock
// constructor returns the concrete type so tests can inspect call counts and
// inject behavior.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithModel("qwen2.5:3b"))
//	titler, err := openai.NewTitler(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	title, err := titler.GenerateTitle(ctx, "Call the dentist about the crown on Tuesday")
//
// Callers treat titling as best effort: when it fails, core.DeriveTitle
// supplies a title from the content itself.
package ai
