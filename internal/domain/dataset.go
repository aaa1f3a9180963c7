package domain

import "fmt"

// TrainDataset is the flattened form of one or more workspaces sent to the training service.
// Texts[i] is labeled Classes[i].
type TrainDataset struct {
	Texts   []string `json:"texts"`
	Classes []string `json:"classes"`
}

// NewTrainDataset flattens workspaces into parallel text and class lists, using the
// category name as the class of each document
func NewTrainDataset(workspaces ...*WorkspaceSnapshot) (*TrainDataset, error) {
	dataset := &TrainDataset{
		Texts:   []string{},
		Classes: []string{},
	}
	for _, w := range workspaces {
		for _, c := range w.Categories {
			for _, d := range c.Documents {
				dataset.Texts = append(dataset.Texts, d.Text)
				dataset.Classes = append(dataset.Classes, c.Name)
			}
		}
	}

	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Validate checks the dataset is non-empty and its lists line up
func (d *TrainDataset) Validate() error {
	if len(d.Texts) != len(d.Classes) {
		return fmt.Errorf("%w: %d texts but %d classes", ErrDatasetShape, len(d.Texts), len(d.Classes))
	}
	if len(d.Texts) == 0 {
		return fmt.Errorf("%w: no documents", ErrDatasetShape)
	}
	return nil
}

// Len returns the number of labeled texts
func (d *TrainDataset) Len() int {
	return len(d.Texts)
}
