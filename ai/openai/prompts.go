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

package openai

import "fmt"

// buildSystemPrompt returns the instructions sent with every title request.
func buildSystemPrompt(maxLen int) string {
	return fmt.Sprintf(`You write titles for short personal notes.

Return a JSON object with exactly one field:
{"title": "A concise, descriptive title (max %d characters)"}

Guidelines:
- Be specific and capture the main topic of the note
- Avoid generic words such as "note", "memory" or "reminder"
- Write the title in the same language as the note
- Do not end the title with punctuation
- Do not wrap the JSON in markdown`, maxLen)
}
