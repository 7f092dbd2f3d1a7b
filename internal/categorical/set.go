package categorical

import "fmt"

// Codes is the encoded condition triple of one trip.
type Codes struct {
	Crowd          int
	Traffic        int
	UserExperience int
}

// Set holds the three encoders the estimator needs. It is read-only once built.
type Set struct {
	Crowd          *Encoder
	Traffic        *Encoder
	UserExperience *Encoder
}

// FitSet fits one encoder per feature column.
func FitSet(crowd, traffic, userExperience []string) *Set {
	return &Set{
		Crowd:          Fit(FeatureCrowd, crowd),
		Traffic:        Fit(FeatureTraffic, traffic),
		UserExperience: Fit(FeatureUserExperience, userExperience),
	}
}

// NewSet rebuilds a set from persisted class lists.
func NewSet(crowd, traffic, userExperience []string) (*Set, error) {
	c, err := FromClasses(FeatureCrowd, crowd)
	if err != nil {
		return nil, err
	}
	t, err := FromClasses(FeatureTraffic, traffic)
	if err != nil {
		return nil, err
	}
	u, err := FromClasses(FeatureUserExperience, userExperience)
	if err != nil {
		return nil, err
	}
	return &Set{Crowd: c, Traffic: t, UserExperience: u}, nil
}

// Encode encodes a full condition triple. The first unknown label aborts with
// an *UnknownCategoryError.
func (s *Set) Encode(crowd, traffic, userExperience string) (Codes, error) {
	if s == nil || s.Crowd == nil || s.Traffic == nil || s.UserExperience == nil {
		return Codes{}, fmt.Errorf("encoder set not loaded")
	}

	var codes Codes
	var err error
	if codes.Crowd, err = s.Crowd.Encode(crowd); err != nil {
		return Codes{}, err
	}
	if codes.Traffic, err = s.Traffic.Encode(traffic); err != nil {
		return Codes{}, err
	}
	if codes.UserExperience, err = s.UserExperience.Encode(userExperience); err != nil {
		return Codes{}, err
	}
	return codes, nil
}
