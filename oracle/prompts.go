package oracle

import (
	"fmt"
	"strings"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/verify"
)

const resolveSystem = `You are a resolver that identifies a software/data tool from noisy user text. Return only JSON, no extra text.`

func resolvePrompt(query string, maxProposals int) string {
	return fmt.Sprintf(`USER_TEXT: %s

Produce JSON with this structure:
{
  "candidates": [
    {
      "tool_name": "<canonical tool name>",
      "developer": "<vendor or developer, if known>",
      "website_domain": "<registrable domain like salesforce.com, if known>",
      "website_url": "<full homepage URL, if known>",
      "confidence": 0.0,
      "notes": "<one-line disambiguation note>"
    }
  ],
  "selected_index": 0,
  "disambiguation": "<one short sentence if multiple tools are plausible>",
  "citations": []
}

Rules:
- If multiple tools match, include the top %d candidates in descending confidence and set selected_index accordingly.
- Prefer official vendor domains, not community links.
- If unsure, still return best-effort candidates and explain uncertainty in "disambiguation".`, query, maxProposals)
}

const discoverSystem = `You are an expert in data integration who discovers available data output methods for software tools. Return only a JSON array, no extra text.`

func discoverPrompt(cand core.ToolCandidate, maxProposals int) string {
	types := make([]string, 0, len(core.KnownMethodTypes()))
	for _, t := range core.KnownMethodTypes() {
		types = append(types, string(t))
	}
	return fmt.Sprintf(`TOOL INFORMATION:
- Name: %s
- Developer: %s
- Domain: %s
- Website: %s

Identify specific data extraction/output methods for this tool as a JSON array:
[
  {
    "method_type": "<one of: %s>",
    "method_name": "<descriptive name>",
    "endpoint": "<API endpoint or connection string if known>",
    "docs_url": "<SPECIFIC documentation URL for THIS method, not a generic developer page>",
    "auth_type": "<authentication method: OAuth, API Key, Bearer Token, etc.>",
    "confidence": 0.0,
    "notes": "<brief implementation notes>"
  }
]

Rules for docs_url:
- Only include docs_url if you can construct it from known patterns such as %s/api/docs, %s/developers, %s/api-reference.
- If unsure about the exact URL, leave docs_url empty. Do not guess documentation URLs.

Other rules:
- Only suggest methods that likely exist for this specific tool.
- Prefer official methods over third-party.
- Rate confidence 0.1-1.0 based on actual knowledge.
- Provide the %d most viable methods based on what actually exists.`,
		cand.ToolName, cand.Developer, cand.WebsiteDomain, cand.WebsiteURL,
		strings.Join(types, "|"),
		cand.WebsiteDomain, cand.WebsiteDomain, cand.WebsiteDomain,
		maxProposals)
}

const judgeSystem = `You assess whether a documentation page covers a specific data output method. Reply with a single number between 0 and 1, nothing else.`

func judgePrompt(j verify.Judgment) string {
	return fmt.Sprintf(`TOOL: %s
METHOD: %s (%s)
URL: %s
PAGE TITLE: %s
PAGE HEADINGS: %s

How specifically does this page document the named method for the named tool?
0 means unrelated or a generic landing page, 1 means dedicated documentation
for exactly this method. Reply with one number.`,
		j.ToolName, j.MethodName, j.MethodType, j.URL, j.Title,
		strings.Join(j.Headings, "; "))
}
