package extract

type plainExtractor struct{}

func (e *plainExtractor) Extract(data []byte) (string, error) {
	return string(data), nil
}
