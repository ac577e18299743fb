package azure

import (
	"context"

	"github.com/w-h-a/fred/generator"
)

type endpointKey struct{}
type deploymentKey struct{}
type apiVersionKey struct{}

func WithEndpoint(endpoint string) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, endpointKey{}, endpoint)
	}
}

func EndpointFrom(ctx context.Context) (string, bool) {
	endpoint, ok := ctx.Value(endpointKey{}).(string)
	return endpoint, ok && len(endpoint) > 0
}

// WithDeployment names the Azure deployment that serves chat completions.
func WithDeployment(deployment string) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, deploymentKey{}, deployment)
	}
}

func DeploymentFrom(ctx context.Context) (string, bool) {
	deployment, ok := ctx.Value(deploymentKey{}).(string)
	return deployment, ok && len(deployment) > 0
}

func WithAPIVersion(version string) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, apiVersionKey{}, version)
	}
}

func APIVersionFrom(ctx context.Context) (string, bool) {
	version, ok := ctx.Value(apiVersionKey{}).(string)
	return version, ok && len(version) > 0
}
