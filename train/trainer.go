package train

import (
	"context"
	"strconv"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

// Params are model hyperparameters passed through to the Trainer untouched.
type Params map[string]any

// ImportanceType selects how feature importance is measured.
type ImportanceType string

const (
	// ImportanceSplit counts how often a feature is used to split.
	ImportanceSplit ImportanceType = "split"
	// ImportanceGain sums the loss reduction of those splits.
	ImportanceGain ImportanceType = "gain"
)

// Dataset is a feature frame with its target.
type Dataset struct {
	X *frame.Frame
	Y *frame.Series
}

// Booster is a trained model.
type Booster interface {
	Predict(X *frame.Frame) ([]float64, error)
	FeatureName() []string
	FeatureImportance(kind ImportanceType) ([]float64, error)
}

// Trainer fits a Booster. valid is used for monitoring and early stopping.
// When tune is set the trainer also searches hyperparameters.
type Trainer interface {
	Train(ctx context.Context, params Params, train, valid Dataset, tune bool) (Booster, error)
}

// TrainerFunc adapts a function to Trainer.
type TrainerFunc func(ctx context.Context, params Params, train, valid Dataset, tune bool) (Booster, error)

// Train calls f.
func (f TrainerFunc) Train(ctx context.Context, params Params, train, valid Dataset, tune bool) (Booster, error) {
	return f(ctx, params, train, valid, tune)
}

// TrainWithValidation checks that each frame matches its target and trains
// one model.
func TrainWithValidation(ctx context.Context, trainer Trainer, xTrain *frame.Frame, yTrain *frame.Series,
	xValid *frame.Frame, yValid *frame.Series, params Params, tune bool) (Booster, error) {
	if xTrain.Nrow() == 0 {
		return nil, errors.NewModelError("TrainWithValidation", "empty data", errors.ErrEmptyData)
	}
	if yTrain.Len() != xTrain.Nrow() {
		return nil, errors.NewDimensionError("TrainWithValidation(train)", xTrain.Nrow(), yTrain.Len(), 0)
	}
	if yValid.Len() != xValid.Nrow() {
		return nil, errors.NewDimensionError("TrainWithValidation(valid)", xValid.Nrow(), yValid.Len(), 0)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.GetLogger().Debug("Training",
		log.TrainSizeKey, xTrain.Nrow(),
		log.ValidSizeKey, xValid.Nrow(),
		log.FeaturesKey, xTrain.Ncol(),
	)
	booster, err := trainer.Train(ctx, params,
		Dataset{X: xTrain, Y: yTrain},
		Dataset{X: xValid, Y: yValid},
		tune)
	if err != nil {
		return nil, errors.Wrap(err, "training failed")
	}
	return booster, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
