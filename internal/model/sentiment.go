package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
)

// ErrNoScore means the text could not be scored and the article should be skipped.
var ErrNoScore = errors.New("no sentiment score")

// MaxSentimentInput is the longest text, in characters and in tokens, passed to the classifier.
const MaxSentimentInput = 512

// Classifier assigns text to one of the model's classes. Class 0 is the most negative.
type Classifier interface {
	Classify(ctx context.Context, text string) (class int, confidence float32, err error)
}

// Scorer maps classifier output onto the 1-5 sentiment scale.
type Scorer struct {
	classifier Classifier
	logger     *zap.SugaredLogger
}

func NewScorer(classifier Classifier, logger *zap.SugaredLogger) *Scorer {
	return &Scorer{classifier: classifier, logger: logger}
}

// Score classifies text. Blank input, classifier failures and out-of-range classes
// all return ErrNoScore.
func (s *Scorer) Score(ctx context.Context, text string) (SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return SentimentResult{}, fmt.Errorf("%w: empty text", ErrNoScore)
	}

	class, confidence, err := s.classifier.Classify(ctx, data.TruncateRunes(text, MaxSentimentInput))
	if err != nil {
		s.logger.Warnw("Sentiment classification failed", "error", err)
		return SentimentResult{}, fmt.Errorf("%w: %v", ErrNoScore, err)
	}

	score := class + 1
	label, ok := LabelFor(score)
	if !ok {
		s.logger.Warnw("Classifier returned class outside the sentiment scale", "class", class)
		return SentimentResult{}, fmt.Errorf("%w: class %d out of range", ErrNoScore, class)
	}

	s.logger.Debugw("Scored text", "score", score, "label", label, "confidence", confidence)

	return SentimentResult{Score: score, Label: label}, nil
}

var ortInitOnce sync.Once
var ortInitErr error

func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	max := logits[0]
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	expSum := float32(0.0)
	for i := range logits {
		out[i] = float32(math.Exp(float64(logits[i] - max))) // prevent overflow
		expSum += out[i]
	}
	for i := range out {
		out[i] /= expSum
	}
	return out
}

func argmax(values []float32) int {
	maxIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}

// initializeORT handles the one-time initialization of ONNX Runtime.
func initializeORT(dllPath string) error {
	ortInitOnce.Do(func() {
		if dllPath != "" {
			onnxruntime.SetSharedLibraryPath(dllPath)
		}
		ortInitErr = onnxruntime.InitializeEnvironment()
		if ortInitErr != nil {
			ortInitErr = fmt.Errorf("error initializing ONNX Runtime environment: %w", ortInitErr)
		}
	})
	return ortInitErr
}

var bertInputNames = []string{"input_ids", "attention_mask", "token_type_ids"}

// ONNXClassifier runs a BERT-style sequence classification model exported to ONNX.
// The session is created once and reused; runs are serialized.
type ONNXClassifier struct {
	mu         sync.Mutex
	session    *onnxruntime.DynamicAdvancedSession
	tokenizer  *WordPieceTokenizer
	numClasses int
}

// NewONNXClassifier loads the model at modelPath with the vocab at vocabPath.
// numClasses is the width of the model's "logits" output.
func NewONNXClassifier(dllPath, modelPath, vocabPath string, numClasses int) (*ONNXClassifier, error) {
	if err := initializeORT(dllPath); err != nil {
		return nil, err
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath, MaxSentimentInput)
	if err != nil {
		return nil, err
	}

	session, err := onnxruntime.NewDynamicAdvancedSession(
		modelPath,
		bertInputNames,     // Model's input names
		[]string{"logits"}, // Model's output name
		nil,                // SessionOptions (nil for default configuration)
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:    session,
		tokenizer:  tokenizer,
		numClasses: numClasses,
	}, nil
}

func (c *ONNXClassifier) Classify(ctx context.Context, text string) (int, float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	input := c.tokenizer.Encode(text)
	shape := onnxruntime.NewShape(1, int64(len(input.InputIDs)))

	inputIDsTensor, err := onnxruntime.NewTensor(shape, input.InputIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("input_ids tensor error: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := onnxruntime.NewTensor(shape, input.AttentionMask)
	if err != nil {
		return 0, 0, fmt.Errorf("attention_mask tensor error: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeTensor, err := onnxruntime.NewTensor(shape, input.TokenTypeIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("token_type_ids tensor error: %w", err)
	}
	defer tokenTypeTensor.Destroy()

	outputTensor, err := onnxruntime.NewEmptyTensor[float32](onnxruntime.NewShape(1, int64(c.numClasses)))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	c.mu.Lock()
	err = c.session.Run(
		[]onnxruntime.Value{inputIDsTensor, attentionMaskTensor, tokenTypeTensor},
		[]onnxruntime.Value{outputTensor},
	)
	c.mu.Unlock()
	if err != nil {
		return 0, 0, fmt.Errorf("ONNX inference run failed: %w", err)
	}

	logits := outputTensor.GetData()
	if len(logits) != c.numClasses {
		return 0, 0, fmt.Errorf("unexpected logits length: got %d, expected %d", len(logits), c.numClasses)
	}

	probabilities := softmax(logits)
	maxIdx := argmax(probabilities)
	return maxIdx, probabilities[maxIdx], nil
}

// Close releases the ONNX session.
func (c *ONNXClassifier) Close() error {
	return c.session.Destroy()
}
