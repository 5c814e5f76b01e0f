// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

var faithfulnessPromptTmpl = template.Must(template.New("faithfulness").Parse(`You are a strict evaluator of faithfulness.

Given:
- CONTEXT passages (ground truth)
- SUMMARY (model output)

Task:
Score faithfulness from 0 to 10.
- 10: every claim is directly supported by CONTEXT.
- 0: mostly unsupported or hallucinated.

If any unsupported claim exists, score must be <= 6.
If score < 7, set needs_improve=true else false.

Return ONLY valid JSON:
{
  "score": 0-10,
  "needs_improve": true/false,
  "notes": "one short sentence"
}
No extra text.

[CONTEXT]
{{.Context}}

[SUMMARY]
{{.Summary}}
`))

// ScoreFaithfulness scores how faithfully a summary sticks to its evidence
// context. It never returns an error: model failure or unparseable output
// yields the conservative verdict (score 0, needs_improve true).
func ScoreFaithfulness(ctx context.Context, completer llm.Completer, evidence, summary string) types.FaithfulnessVerdict {
	failed := types.FaithfulnessVerdict{Score: 0, NeedsImprove: true, Notes: "faithfulness verdict unparseable"}

	var buf bytes.Buffer
	if err := faithfulnessPromptTmpl.Execute(&buf, struct{ Context, Summary string }{evidence, summary}); err != nil {
		return failed
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return failed
	}

	raw := []byte(out)
	var v types.FaithfulnessVerdict
	if err := json.Unmarshal(raw, &v); err != nil {
		block := braceBlockRe.FindString(out)
		if block == "" {
			return failed
		}
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			return failed
		}
	}

	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 10 {
		v.Score = 10
	}
	if v.Score < 7 {
		v.NeedsImprove = true
	}
	return v
}
