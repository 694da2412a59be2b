package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
)

type ExplanationService struct {
	apiKey     string
	apiURL     string
	model      string
	symbol     string
	enabled    bool
	httpClient *http.Client
	log        *logrus.Logger
}

type ExplanationConfig struct {
	APIKey         string
	APIURL         string
	Model          string
	CurrencySymbol string
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a personal finance educator. Explain investment projections " +
	"clearly and honestly in plain English. Never promise returns; remind the reader " +
	"that the rate is an assumption."

// NewExplanationService returns a service that uses the chat-completions API
// when an API key is configured and a fixed text otherwise.
func NewExplanationService(cfg ExplanationConfig, log *logrus.Logger) *ExplanationService {
	return &ExplanationService{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.APIURL,
		model:   cfg.Model,
		symbol:  cfg.CurrencySymbol,
		enabled: cfg.APIKey != "" && cfg.APIURL != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Explain describes a calculation result. It never fails: any problem with
// the remote API falls back to the fixed explanation.
func (s *ExplanationService) Explain(ctx context.Context, p domain.GoalParameters, result domain.GoalResult) string {
	if !s.enabled || result.Status != domain.GoalReached {
		return s.fallback(p, result)
	}

	prompt := fmt.Sprintf(`Explain this investment goal projection in 3-4 sentences.

- Current investment value: %s
- Annual compounding rate: %.2f%%
- Annual contribution: %s
- Target amount: %s
- Time required: %.2f years
- Formula: %s

Say how much of the growth comes from contributions versus compounding, and give one practical tip.`,
		FormatMoney(s.symbol, p.PresentValue), p.AnnualRatePercent,
		FormatMoney(s.symbol, p.AnnualContribution), FormatMoney(s.symbol, p.TargetAmount),
		result.ElapsedYears, FormulaWithValues(p))

	explanation, err := s.callLLM(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Warn("explanation request failed, using fallback")
		return s.fallback(p, result)
	}
	return explanation
}

func (s *ExplanationService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 300,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response from AI")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (s *ExplanationService) fallback(p domain.GoalParameters, result domain.GoalResult) string {
	switch result.Status {
	case domain.GoalAlreadyMet:
		return "No further saving is needed: the current value is already at or above the target."
	case domain.GoalUnreachable:
		if p.AnnualRatePercent == 0 && p.AnnualContribution == 0 {
			return "With no growth and no contributions the investment never changes. Add a yearly contribution or assume a positive rate."
		}
		return fmt.Sprintf("Even after %.0f years the projection stays below the target. Increase the yearly contribution or lower the target.", HorizonYears)
	}

	years := result.ElapsedYears
	contributed := p.AnnualContribution * years
	growth := FutureValue(p, years) - p.PresentValue - contributed
	if result.LinearGrowth {
		return fmt.Sprintf("At a 0%% rate the investment grows only by contributions: %s a year reaches the target in %.2f years.",
			FormatMoney(s.symbol, p.AnnualContribution), years)
	}
	return fmt.Sprintf("Over %.2f years you contribute about %s and compounding at %.2f%% adds about %s on top of your starting %s. Starting earlier or contributing more shortens the time considerably.",
		years, FormatMoney(s.symbol, contributed), p.AnnualRatePercent,
		FormatMoney(s.symbol, growth), FormatMoney(s.symbol, p.PresentValue))
}

// Guide returns the static educational content shown next to the calculator.
func (s *ExplanationService) Guide() []domain.GuideSection {
	return []domain.GuideSection{
		{
			Title: "How Compounding Works",
			Body: "Compounding is the process where the value of an investment increases because the earnings on an investment, " +
				"both capital gains and interest, earn interest as time passes. This growth, calculated on the initial principal " +
				"and the accumulated earnings of prior periods, is the basis of how investments grow over time.",
		},
		{
			Title: "Investment Tips",
			Items: []string{
				"Start investing early to take advantage of compound interest.",
				"Diversify your portfolio to spread risk.",
				"Regularly review and rebalance your investments.",
				"Consider seeking professional financial advice for personalized strategies.",
			},
		},
		{
			Title: "Parameters",
			Items: []string{
				"A: target amount to be reached",
				"P: current investment value",
				"r: annual compounding rate (percent)",
				"PMT: annual contribution",
				"t: time in years required to reach the target amount",
			},
		},
	}
}
