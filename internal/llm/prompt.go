package llm

import (
	"fmt"

	"dataspark.io/insights-service/internal/dataset"
)

const insightsPromptTemplate = `Analyze this dataset and provide key insights:

Columns: %s

Statistical Summary:
%s

Sample Data:
%s

Provide:
1. Key patterns/trends (concise)
2. Notable correlations/anomalies
3. Business implications (if any)
4. Analysis recommendations
5. Add a confidence score (0-100) for each insight

Format in clear markdown with headers.`

// insightsPrompt formats a dataset summary into the fixed prompt every
// backend sends. The template is shared so switching backends never changes
// what the model is asked.
func insightsPrompt(s dataset.Summary) string {
	return fmt.Sprintf(insightsPromptTemplate, s.Columns, s.Stats, s.Sample)
}
