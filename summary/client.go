package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/pkg/errors"
)

const defaultApiUrl = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// Client produces the parent-facing narrative from the raw teacher notes and
// the day's entries. It is an optional convenience: without an API key, or on
// any error, the raw teacher notes are used as-is.
type Client struct {
	ApiKey string
	// Url overrides the API endpoint, for tests.
	Url string

	httpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		ApiKey: apiKey,
		Url:    defaultApiUrl,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// DailySummary returns a warm narrative of the child's day, translated to
// the parent's preferred language where applicable. Falls back to the raw
// teacher notes on any failure.
func (c *Client) DailySummary(ctx context.Context, log store.DailyLog, child store.Child, parent store.Parent) string {
	if c.ApiKey == "" {
		return log.TeacherNotes
	}

	text, err := c.generate(ctx, buildPrompt(log, child, parent))
	if err != nil || text == "" {
		return log.TeacherNotes
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.Url+"?key="+c.ApiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "summary call failed")
	}
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("summary api returned %d", resp.StatusCode)
	}

	parsed := generateResponse{}
	if err := json.Unmarshal(b, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("summary api returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(log store.DailyLog, child store.Child, parent store.Parent) string {
	meals := make([]string, 0, len(log.Meals))
	for _, m := range log.Meals {
		meals = append(meals, fmt.Sprintf("%s: %s (%s eaten)", m.Type, m.Items, m.Amount))
	}
	naps := make([]string, 0, len(log.Naps))
	for _, n := range log.Naps {
		naps = append(naps, fmt.Sprintf("From %s to %s (Quality: %s)", n.StartTime, n.EndTime, n.Quality))
	}
	activities := make([]string, 0, len(log.Activities))
	for _, a := range log.Activities {
		activities = append(activities, fmt.Sprintf("%s: %s", a.Category, a.Description))
	}

	return fmt.Sprintf(`Generate a warm, professional, and friendly daycare daily summary for a parent.
Child Name: %s
Date: %s
Mood: %s
Meals: %s
Naps: %s
Activities: %s
Raw Teacher Notes: %s
Preferred Language: %s

Instructions:
- If language is Urdu or Punjabi, provide the translation of the narrative.
- Focus on the positive highlights of the day.
- Use a supportive and caring tone.
- Format as a cohesive paragraph or two.`,
		child.FirstName,
		log.Date,
		log.OverallMood,
		strings.Join(meals, ", "),
		strings.Join(naps, ", "),
		strings.Join(activities, ", "),
		log.TeacherNotes,
		parent.PreferredLanguage,
	)
}
