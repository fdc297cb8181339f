package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"runtime"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/otiai10/gosseract/v2"

	"artifact-scanner/src/logutil"
)

// ModelConfig names the serialized model and its vocabulary.
type ModelConfig struct {
	// TessdataPrefix is the directory holding <Language>.traineddata.
	TessdataPrefix string
	Language       string
	// VocabularyPath is a JSON index-to-word mapping. Its characters become
	// the recognition whitelist.
	VocabularyPath string
	// Clients is the number of concurrent recognitions. Defaults to NumCPU.
	Clients int
}

// Tesseract holds a pool of gosseract clients. A client is not safe for
// concurrent use, so each call borrows one.
type Tesseract struct {
	clients *clientPool[*gosseract.Client]
}

// Open loads the model once per client. Call Close to release it.
func Open(cfg ModelConfig) (*Tesseract, error) {
	if cfg.Language == "" {
		cfg.Language = "chi_sim"
	}
	n := cfg.Clients
	if n <= 0 {
		n = runtime.NumCPU()
	}

	whitelist := ""
	if cfg.VocabularyPath != "" {
		w, err := LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return nil, err
		}
		whitelist = w
	}

	all := make([]*gosseract.Client, 0, n)
	for i := 0; i < n; i++ {
		c, err := newClient(cfg, whitelist)
		if err != nil {
			for _, c := range all {
				c.Close()
			}
			return nil, err
		}
		all = append(all, c)
	}
	t := &Tesseract{clients: newClientPool(all)}

	logutil.Info(logutil.Fields{
		"lang":      cfg.Language,
		"clients":   n,
		"whitelist": len([]rune(whitelist)),
	}, "ocr: model loaded")
	return t, nil
}

func newClient(cfg ModelConfig, whitelist string) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, &RecognitionError{Op: "open", Err: err}
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, &RecognitionError{Op: "open", Err: fmt.Errorf("set language %q: %w", cfg.Language, err)}
	}

	// Item names and numbers are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, &RecognitionError{Op: "open", Err: err}
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			client.Close()
			return nil, &RecognitionError{Op: "open", Err: err}
		}
	}
	return client, nil
}

// Recognize preprocesses img and runs one inference. A uniform region
// short-circuits to an empty result.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if err := CheckInput(img); err != nil {
		return Result{}, err
	}

	png, uniform, err := preprocess(img)
	if err != nil {
		return Result{}, &RecognitionError{Op: "preprocess", Err: err}
	}
	if uniform {
		return Result{}, nil
	}

	client, err := t.clients.get(ctx)
	if err != nil {
		if err == ErrClosed {
			return Result{}, &RecognitionError{Op: "recognize", Err: err}
		}
		return Result{}, err
	}
	defer t.clients.put(client)

	if err := client.SetImageFromBytes(png); err != nil {
		return Result{}, &RecognitionError{Op: "recognize", Err: err}
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return Result{}, &RecognitionError{Op: "recognize", Err: err}
	}
	return fromBoxes(boxes), nil
}

func fromBoxes(boxes []gosseract.BoundingBox) Result {
	var (
		sb    strings.Builder
		total float64
		n     int
	)
	for _, b := range boxes {
		word := NormalizeText(b.Word)
		if word == "" {
			continue
		}
		sb.WriteString(word)
		total += b.Confidence
		n++
	}
	if n == 0 {
		return Result{}
	}
	conf := total / float64(n) / 100
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return Result{Text: sb.String(), Confidence: conf}
}

// Close stops new calls and releases each client once its call in flight
// has returned it, waiting up to closeWait.
func (t *Tesseract) Close() error {
	return t.clients.close(closeWait)
}

// LoadVocabulary reads a JSON index-to-word mapping, either an object
// ({"0": "暴", ...}) or an array, and returns its distinct characters sorted.
func LoadVocabulary(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &RecognitionError{Op: "vocabulary", Err: err}
	}

	var words []string
	var byIndex map[string]string
	if err := jsoniter.Unmarshal(data, &byIndex); err == nil {
		for _, w := range byIndex {
			words = append(words, w)
		}
	} else if err := jsoniter.Unmarshal(data, &words); err != nil {
		return "", &RecognitionError{Op: "vocabulary", Err: fmt.Errorf("%s: expected object or array of strings", path)}
	}

	seen := make(map[rune]bool)
	for _, w := range words {
		for _, r := range w {
			if r > ' ' {
				seen[r] = true
			}
		}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes), nil
}
