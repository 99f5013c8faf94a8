package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/go-playground/validator/v10"

	"github.com/flowshot-io/zipfolders/pkg/prettysize"
)

type (
	// Settings holds everything the command line can also set.
	Settings struct {
		Location string `json:"location"`
		// RemoveFolders is nil when the user should be asked.
		RemoveFolders *bool       `json:"removeFolders"`
		Quiet         bool        `json:"quiet"`
		SizePrecision int         `json:"sizePrecision" validate:"gte=0,lte=12"`
		Upload        string      `json:"upload" validate:"omitempty,contains=://"`
		NoPause       bool        `json:"noPause"`
		Log           LogSettings `json:"log"`
	}

	LogSettings struct {
		Level  string `json:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
		Pretty bool   `json:"pretty"`
	}
)

// Default returns the settings used when neither a file nor flags say otherwise.
func Default() Settings {
	return Settings{
		Location:      ".",
		SizePrecision: prettysize.DefaultPrecision,
		Log: LogSettings{
			Level:  "warn",
			Pretty: true,
		},
	}
}

// Load reads the YAML file at path into config and validates it. Fields
// absent from the file keep the values config already holds.
func Load(path string, config interface{}) error {
	f, err := getConfigFile(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(f)
	if err != nil {
		return err
	}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return fmt.Errorf("error parsing config file %s: %w", f, err)
	}

	return Validate(config)
}

func Validate(config interface{}) error {
	validate := validator.New()
	return validate.Struct(config)
}

func getConfigFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("config file %s does not exist", path)
	}

	return path, nil
}
