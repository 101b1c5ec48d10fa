package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when
// --config is not given. Missing file means defaults.
const DefaultFile = "voicechatbot.yaml"

// Settings mirrors the optional YAML config file. Absent keys keep the
// defaults below.
type Settings struct {
	Engine string         `yaml:"engine"`
	Setup  SetupSettings  `yaml:"setup"`
	Speech SpeechSettings `yaml:"speech"`
	Chat   ChatSettings   `yaml:"chat"`
}

type SetupSettings struct {
	Manifest string `yaml:"manifest"`
	Tools    []Tool `yaml:"tools"`
}

// Tool is one installable prerequisite: the executable probed for and the
// Homebrew package that provides it.
type Tool struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package"`
}

type SpeechSettings struct {
	WhisperModel  string   `yaml:"whisper_model"`
	Language      string   `yaml:"language"`
	Locale        string   `yaml:"locale"`
	RecordSeconds int      `yaml:"record_seconds"`
	MaxRetries    int      `yaml:"max_retries"`
	YesWords      []string `yaml:"yes_words"`
	NoWords       []string `yaml:"no_words"`
	SileroModel   string   `yaml:"silero_model"`
}

type ChatSettings struct {
	AppBundleID      string `yaml:"app_bundle_id"`
	DictationKeyCode int    `yaml:"dictation_key_code"`
	Voice            string `yaml:"voice"`
}

var (
	Current         *Settings
	APIKey          string
	GoogleDisabled  bool
	SileroModelPath string
)

func Defaults() *Settings {
	return &Settings{
		Engine: "whisper",
		Setup: SetupSettings{
			Manifest: "requirements.txt",
			Tools: []Tool{
				{Name: "rec", Package: "sox"},
				{Name: "ffmpeg", Package: "ffmpeg"},
			},
		},
		Speech: SpeechSettings{
			WhisperModel:  "tiny",
			Language:      "ja",
			Locale:        "ja-JP",
			RecordSeconds: 3,
			MaxRetries:    3,
			YesWords:      []string{"はい", "hai", "yes", "うん", "そうです", "オッケー", "ok", "そう"},
			NoWords:       []string{"いいえ", "いえ", "no", "だめ", "やめ", "キャンセル", "ストップ", "中止"},
			SileroModel:   "silero_vad.onnx",
		},
		Chat: ChatSettings{
			AppBundleID:      "com.openai.chat",
			DictationKeyCode: 54,
			Voice:            "Kyoko",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return settings, nil
}

// Init loads the config file and the .env environment into the package
// globals. Called once from the root command.
func Init(path string) error {
	settings, err := Load(path)
	if err != nil {
		return err
	}
	Current = settings

	godotenv.Load()
	APIKey = os.Getenv("API_KEY")
	if APIKey == "" {
		GoogleDisabled = true
	}

	modelPath, err := filepath.Abs(settings.Speech.SileroModel)
	if err != nil {
		return fmt.Errorf("failed to resolve silero model path: %w", err)
	}
	SileroModelPath = modelPath

	return nil
}
