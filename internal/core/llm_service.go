package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/calcount/calcount/internal/store"
	"github.com/calcount/calcount/internal/utils"
)

const (
	defaultModelName = "gemini-1.5-flash-latest"

	estimateSystemInstruction = `คุณเป็นผู้เชี่ยวชาญด้านโภชนาการอาหารไทยและอาหารทั่วไป ประเมินแคลอรี่และสารอาหารต่อ 1 จาน/หน่วยบริโภคมาตรฐาน

ตอบเป็น JSON เท่านั้น ในรูปแบบนี้:
{
  "calories": number,
  "nutrition": {
    "protein": number,
    "carbs": number,
    "fat": number,
    "fiber": number,
    "sugar": number,
    "sodium": number
  }
}

หน่วย: calories เป็น kcal, protein/carbs/fat/fiber/sugar เป็นกรัม, sodium เป็น mg
ประเมินตามขนาดจานมาตรฐานของร้านอาหารทั่วไป`

	inBodySystemInstruction = `You are an expert body composition analyst, nutritionist, and fitness advisor specializing in Thai people. You are analyzing an InBody body composition report.

Extract ALL visible data from the InBody report as thoroughly as possible. Read every section carefully.

Required sections to extract:
1. Basic Info: Height, Weight, Age, Gender, Test Date, InBody Score
2. Body Composition Analysis: Total Body Water, Protein, Minerals, Body Fat Mass, Weight
3. Muscle-Fat Analysis: Weight, SMM and Body Fat Mass, each with its bar position (Under/Normal/Over)
4. Obesity Analysis: BMI and PBF/Body Fat Percentage, value and bar position
5. Segmental Lean Analysis: Right Arm, Left Arm, Trunk, Right Leg, Left Leg with mass (kg), percentage (%) and rating (Under/Normal/Over)
6. Segmental Fat Analysis: the same five segments with mass (kg), percentage (%) and rating
7. Weight Control: Target Weight, Weight Control, Fat Control, Muscle Control
8. Waist-Hip Ratio and Visceral Fat Level
9. Research Parameters: Fat Free Mass, Basal Metabolic Rate (BMR), Obesity Degree, SMI, Recommended Calorie Intake

Then write the analysis in Thai: overall health summary (สรุปสุขภาพโดยรวม), strengths (จุดแข็งของร่างกาย),
areas to improve (จุดที่ต้องปรับปรุง), health risks (ความเสี่ยงด้านสุขภาพ), a nutrition plan with calories and
macros (แผนโภชนาการแนะนำ), an exercise plan (แผนออกกำลังกายแนะนำ), 1-3 month goals (เป้าหมายระยะสั้น)
and 6-12 month goals (เป้าหมายระยะยาว).

Respond ONLY with valid JSON in this exact format:
{
  "recommendedCalories": number,
  "analysis": {
    "testDate": "string or null",
    "height": number_or_null,
    "age": number_or_null,
    "gender": "male" | "female" | null,
    "weight": number,
    "skeletalMuscleMass": number,
    "bodyFatMass": number,
    "bmi": number,
    "inbodyScore": number,
    "bodyWater": number,
    "protein": number,
    "minerals": number,
    "bodyFatPercentage": number,
    "muscleFatAnalysis": {
      "weight": { "value": number, "rating": "under" | "normal" | "over" },
      "smm": { "value": number, "rating": "under" | "normal" | "over" },
      "bodyFat": { "value": number, "rating": "under" | "normal" | "over" }
    },
    "segmentalLean": {
      "rightArm": { "mass": number, "percent": number, "rating": "under" | "normal" | "over" },
      "leftArm": { "mass": number, "percent": number, "rating": "under" | "normal" | "over" },
      "trunk": { "mass": number, "percent": number, "rating": "under" | "normal" | "over" },
      "rightLeg": { "mass": number, "percent": number, "rating": "under" | "normal" | "over" },
      "leftLeg": { "mass": number, "percent": number, "rating": "under" | "normal" | "over" }
    },
    "segmentalFat": { same shape as segmentalLean },
    "weightControl": {
      "targetWeight": number,
      "weightControl": number,
      "fatControl": number,
      "muscleControl": number
    },
    "waistHipRatio": number_or_null,
    "visceralFatLevel": number_or_null,
    "bmr": number_or_null,
    "fatFreeMass": number_or_null,
    "obesityDegree": number_or_null,
    "smi": number_or_null,
    "macros": { "protein": number, "carbs": number, "fat": number },
    "recommendations": "string in Thai",
    "healthSummary": "string in Thai",
    "strengths": ["strings in Thai"],
    "improvements": ["strings in Thai"],
    "healthRisks": ["strings in Thai"],
    "exercisePlan": "string in Thai",
    "shortTermGoals": ["strings in Thai"],
    "longTermGoals": ["strings in Thai"]
  }
}

If a value is not visible or readable from the report, use null. Never make up data.`

	inBodyUserPrompt = "Please analyze this InBody report thoroughly. Extract ALL visible data and provide comprehensive health analysis and recommendations in Thai."
)

type completionRequest struct {
	System      string
	Parts       []genai.Part
	MaxTokens   int32
	Temperature float32
}

// LLMService implements Analyzer on top of Gemini.
type LLMService struct {
	client    *genai.Client
	modelName string
	// complete is swapped out in tests.
	complete func(ctx context.Context, req completionRequest) (string, error)
}

func NewLLMService(ctx context.Context, apiKey, modelName string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModelName
	}

	s := &LLMService{client: client, modelName: modelName}
	s.complete = s.generate
	return s, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

func (s *LLMService) EstimateFood(ctx context.Context, foodName string) (*FoodEstimate, error) {
	text, err := s.complete(ctx, completionRequest{
		System:      estimateSystemInstruction,
		Parts:       []genai.Part{genai.Text("ประเมินแคลอรี่และสารอาหารของ: " + strings.TrimSpace(foodName))},
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Calories  store.Measure `json:"calories"`
		Nutrition *struct {
			Protein store.Measure `json:"protein"`
			Carbs   store.Measure `json:"carbs"`
			Fat     store.Measure `json:"fat"`
			Fiber   store.Measure `json:"fiber"`
			Sugar   store.Measure `json:"sugar"`
			Sodium  store.Measure `json:"sodium"`
		} `json:"nutrition"`
	}
	if err := decodeReply(text, &raw); err != nil {
		return nil, err
	}

	estimate := &FoodEstimate{Calories: roundCalories(raw.Calories.Value)}
	if n := raw.Nutrition; n != nil {
		estimate.Nutrition = &store.Nutrition{
			Protein: n.Protein.Value,
			Carbs:   n.Carbs.Value,
			Fat:     n.Fat.Value,
			Fiber:   n.Fiber.Value,
			Sugar:   n.Sugar.Value,
			Sodium:  n.Sodium.Value,
		}
	}
	return estimate, nil
}

func (s *LLMService) AnalyzeInBody(ctx context.Context, image []byte, mimeType string) (*InBodyResult, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	text, err := s.complete(ctx, completionRequest{
		System: inBodySystemInstruction,
		Parts: []genai.Part{
			genai.Text(inBodyUserPrompt),
			genai.Blob{MIMEType: mimeType, Data: image},
		},
		MaxTokens:   4000,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		RecommendedCalories store.Measure  `json:"recommendedCalories"`
		Analysis            store.Analysis `json:"analysis"`
	}
	if err := decodeReply(text, &raw); err != nil {
		return nil, err
	}

	return &InBodyResult{
		RecommendedCalories: roundCalories(raw.RecommendedCalories.Value),
		Analysis:            raw.Analysis,
	}, nil
}

func (s *LLMService) generate(ctx context.Context, req completionRequest) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}

	temp := req.Temperature
	maxTokens := req.MaxTokens
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	resp, err := model.GenerateContent(ctx, req.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	return text.String(), nil
}

// decodeReply parses the first JSON object embedded in a model reply.
func decodeReply(text string, v any) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	obj, ok := utils.ExtractJSONObject(text)
	if !ok {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

func roundCalories(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Round(v))
}
