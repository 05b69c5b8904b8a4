// Package config loads backend credentials from Kubernetes secrets and the
// console definition from a YAML file.
package config

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	tokenKey   = "api-token"
	baseURLKey = "base-url"
)

// Config holds the backend API credentials.
type Config struct {
	APIToken string
	// BaseURL overrides the console file's backend URL when the secret
	// carries a "base-url" key.
	BaseURL string
}

// secretRef holds the parsed namespace and name of a Kubernetes secret.
type secretRef struct {
	Namespace string
	Name      string
}

// parseSecretRef parses a "namespace/secret-name" string into its parts.
func parseSecretRef(ref string) (secretRef, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return secretRef{}, fmt.Errorf("invalid --secret value %q: expected namespace/secret-name", ref)
	}
	return secretRef{Namespace: parts[0], Name: parts[1]}, nil
}

// buildKubeClient creates a Kubernetes clientset from the given kubeconfig path.
// If kubeconfig is empty, it falls back to the default loading rules and then
// in-cluster config.
func buildKubeClient(kubeconfig string) (kubernetes.Interface, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		configOverrides := &clientcmd.ConfigOverrides{}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules, configOverrides).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return client, nil
}

// Load reads the backend API token from a Kubernetes secret.
//
// secretFlag is the --secret flag value in "namespace/secret-name" format.
// kubeconfig is an optional path to a kubeconfig file (empty uses the default).
func Load(ctx context.Context, secretFlag string, kubeconfig string) (*Config, error) {
	ref, err := parseSecretRef(secretFlag)
	if err != nil {
		return nil, err
	}

	client, err := buildKubeClient(kubeconfig)
	if err != nil {
		return nil, err
	}

	return loadFromClient(ctx, client, ref)
}

// loadFromClient fetches the secret using the provided Kubernetes client.
func loadFromClient(ctx context.Context, client kubernetes.Interface, ref secretRef) (*Config, error) {
	secret, err := client.CoreV1().Secrets(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching secret %s/%s: %w", ref.Namespace, ref.Name, err)
	}

	token, ok := secret.Data[tokenKey]
	if !ok {
		return nil, fmt.Errorf("secret %s/%s does not contain key %q", ref.Namespace, ref.Name, tokenKey)
	}

	tokenStr := strings.TrimSpace(string(token))
	if tokenStr == "" {
		return nil, fmt.Errorf("secret %s/%s has an empty %q value", ref.Namespace, ref.Name, tokenKey)
	}

	return &Config{
		APIToken: tokenStr,
		BaseURL:  strings.TrimSpace(string(secret.Data[baseURLKey])),
	}, nil
}
