// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/openfga/go-sdk/client"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/canonical/erp-access-service/internal/authorization"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/openfga"
	"github.com/canonical/erp-access-service/internal/tracing"
)

const (
	StoreName = "erp-access-service"

	storeIDKey = "OPENFGA_STORE_ID"
	modelIDKey = "OPENFGA_AUTHORIZATION_MODEL_ID"
)

// fgaModel is what create-fga-model reports and stores in the configmap.
type fgaModel struct {
	StoreID      string `json:"store_id"`
	ModelID      string `json:"model_id"`
	StoreCreated bool   `json:"store_created"`
}

func (m *fgaModel) configMapData() map[string]string {
	return map[string]string{
		storeIDKey: m.StoreID,
		modelIDKey: m.ModelID,
	}
}

var createFgaModelCmd = &cobra.Command{
	Use:   "create-fga-model",
	Short: "Writes the role and team authorization model to OpenFGA",
	Long:  `Writes the role and team authorization model to OpenFGA, creating the store when no store ID is given`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiURL, _ := cmd.Flags().GetString("fga-api-url")
		apiToken, _ := cmd.Flags().GetString("fga-api-token")
		storeID, _ := cmd.Flags().GetString("fga-store-id")
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("verbose")
		configMapResource, _ := cmd.Flags().GetString("store-k8s-configmap-resource")
		kubeconfigPath, _ := cmd.Flags().GetString("kubeconfig")

		writer, err := newModelWriter(apiURL, apiToken, storeID, verbose)
		if err != nil {
			return err
		}

		model, err := writeAuthorizationModel(cmd.Context(), writer, storeID)
		if err != nil {
			return err
		}

		if configMapResource != "" {
			namespace, name, err := splitResource(configMapResource)
			if err != nil {
				return err
			}

			clientset, err := newKubernetesClient(kubeconfigPath)
			if err != nil {
				return err
			}

			if err := upsertConfigMap(cmd.Context(), clientset, namespace, name, model.configMapData()); err != nil {
				return fmt.Errorf("failed to update configmap: %w", err)
			}
			cmd.PrintErrf("ConfigMap %s updated\n", configMapResource)
		}

		if format == "json" {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(model)
		}

		cmd.Printf("Created model: %s\n", model.ModelID)
		if model.StoreCreated {
			cmd.Printf("Created store: %s\n", model.StoreID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(createFgaModelCmd)

	createFgaModelCmd.Flags().String("fga-api-url", "", "The openfga API URL")
	createFgaModelCmd.Flags().String("fga-api-token", "", "The openfga API token")
	createFgaModelCmd.Flags().String("fga-store-id", "", "The openfga store to create the model in, if empty one will be created")
	createFgaModelCmd.Flags().String("format", "text", "Output format (text or json)")
	createFgaModelCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	createFgaModelCmd.Flags().String("store-k8s-configmap-resource", "", "The configmap resource to store the FGA Store ID and Model ID, format: namespace/name")
	createFgaModelCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig file (optional, defaults to in-cluster config)")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-url")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-token")
}

func newModelWriter(apiURL, apiToken, storeID string, verbose bool) (*openfga.Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	logger := logging.NewNoopLogger()

	// no model ID yet, so the config is not validated
	return openfga.NewClient(
		&openfga.Config{
			ApiScheme: u.Scheme,
			ApiHost:   u.Host,
			StoreID:   storeID,
			ApiToken:  apiToken,
			Debug:     verbose,
			Tracer:    tracing.NewNoopTracer(),
			Monitor:   monitoring.NewNoopMonitor(StoreName, logger),
			Logger:    logger,
		},
	), nil
}

// writeAuthorizationModel writes the v0 model, creating the store first when
// storeID is empty.
func writeAuthorizationModel(ctx context.Context, writer ModelWriterInterface, storeID string) (*fgaModel, error) {
	model := &fgaModel{StoreID: storeID}

	if storeID == "" {
		id, err := writer.CreateStore(ctx, StoreName)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}

		writer.SetStoreID(ctx, id)
		model.StoreID = id
		model.StoreCreated = true
	}

	authzModel := authorization.NewAuthorizationModelProvider("v0").GetModel()

	modelID, err := writer.WriteModel(
		ctx,
		&client.ClientWriteAuthorizationModelRequest{
			TypeDefinitions: authzModel.TypeDefinitions,
			SchemaVersion:   authzModel.SchemaVersion,
			Conditions:      authzModel.Conditions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}

	model.ModelID = modelID

	return model, nil
}

func splitResource(resource string) (string, string, error) {
	parts := strings.Split(resource, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid configmap resource format: %s, expected namespace/name", resource)
	}

	return parts[0], parts[1], nil
}

// newKubernetesClient uses the kubeconfig when given, the in-cluster config
// otherwise and the default loading rules as a last resort.
func newKubernetesClient(kubeconfigPath string) (kubernetes.Interface, error) {
	var config *rest.Config
	var err error

	if kubeconfigPath != "" {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	} else if config, err = rest.InClusterConfig(); err != nil {
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			clientcmd.NewDefaultClientConfigLoadingRules(),
			&clientcmd.ConfigOverrides{},
		).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

// upsertConfigMap merges data into the configmap, creating it if missing.
func upsertConfigMap(ctx context.Context, clientset kubernetes.Interface, namespace, name string, data map[string]string) error {
	configMaps := clientset.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data:       data,
		}
		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create configmap %s/%s: %w", namespace, name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string, len(data))
	}
	for k, v := range data {
		cm.Data[k] = v
	}

	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update configmap %s/%s: %w", namespace, name, err)
	}

	return nil
}
