//go:build !unix && !windows

package owner

import "io/fs"

type unsupportedResolver struct{}

func newPlatformResolver(Config) (Resolver, error) {
	return unsupportedResolver{}, nil
}

func (unsupportedResolver) Capable() bool {
	return false
}

func (unsupportedResolver) Owner(string, fs.FileInfo) (string, error) {
	return "", ErrUnsupported
}
