// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

//go:generate mockgen -build_flags=--mod=mod -package cmd -destination ./mock_interfaces.go -source=./interfaces.go

func TestWriteAuthorizationModel(t *testing.T) {
	tests := []struct {
		name        string
		storeID     string
		setupMocks  func(*MockModelWriterInterface)
		expected    *fgaModel
		expectedErr bool
	}{
		{
			name:    "existing store",
			storeID: "store-1",
			setupMocks: func(m *MockModelWriterInterface) {
				m.EXPECT().WriteModel(gomock.Any(), gomock.Any()).Return("model-1", nil)
			},
			expected: &fgaModel{StoreID: "store-1", ModelID: "model-1"},
		},
		{
			name:    "store created",
			storeID: "",
			setupMocks: func(m *MockModelWriterInterface) {
				gomock.InOrder(
					m.EXPECT().CreateStore(gomock.Any(), StoreName).Return("store-2", nil),
					m.EXPECT().SetStoreID(gomock.Any(), "store-2"),
					m.EXPECT().WriteModel(gomock.Any(), gomock.Any()).Return("model-2", nil),
				)
			},
			expected: &fgaModel{StoreID: "store-2", ModelID: "model-2", StoreCreated: true},
		},
		{
			name:    "store creation fails",
			storeID: "",
			setupMocks: func(m *MockModelWriterInterface) {
				m.EXPECT().CreateStore(gomock.Any(), StoreName).Return("", errors.New("unavailable"))
			},
			expectedErr: true,
		},
		{
			name:    "model write fails",
			storeID: "store-1",
			setupMocks: func(m *MockModelWriterInterface) {
				m.EXPECT().WriteModel(gomock.Any(), gomock.Any()).Return("", errors.New("invalid model"))
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			writer := NewMockModelWriterInterface(ctrl)
			tt.setupMocks(writer)

			model, err := writeAuthorizationModel(context.Background(), writer, tt.storeID)

			if tt.expectedErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *model != *tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, model)
			}
		})
	}
}

func TestUpsertConfigMap(t *testing.T) {
	data := (&fgaModel{StoreID: "store-1", ModelID: "model-1"}).configMapData()

	tests := []struct {
		name     string
		existing []*corev1.ConfigMap
		expected map[string]string
	}{
		{
			name:     "created when missing",
			expected: data,
		},
		{
			name: "merged into existing data",
			existing: []*corev1.ConfigMap{
				{
					ObjectMeta: metav1.ObjectMeta{Name: "fga", Namespace: "erp"},
					Data:       map[string]string{"LOG_LEVEL": "debug", storeIDKey: "old"},
				},
			},
			expected: map[string]string{"LOG_LEVEL": "debug", storeIDKey: "store-1", modelIDKey: "model-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientset := fake.NewSimpleClientset()
			for _, cm := range tt.existing {
				if _, err := clientset.CoreV1().ConfigMaps(cm.Namespace).Create(context.Background(), cm, metav1.CreateOptions{}); err != nil {
					t.Fatalf("failed to seed configmap: %v", err)
				}
			}

			if err := upsertConfigMap(context.Background(), clientset, "erp", "fga", data); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			cm, err := clientset.CoreV1().ConfigMaps("erp").Get(context.Background(), "fga", metav1.GetOptions{})
			if err != nil {
				t.Fatalf("failed to get configmap: %v", err)
			}

			if len(cm.Data) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, cm.Data)
			}
			for k, v := range tt.expected {
				if cm.Data[k] != v {
					t.Errorf("expected %s=%s, got %s", k, v, cm.Data[k])
				}
			}
		})
	}
}

func TestSplitResource(t *testing.T) {
	tests := []struct {
		resource    string
		expectedErr bool
	}{
		{"erp/fga", false},
		{"fga", true},
		{"erp/", true},
		{"a/b/c", true},
	}

	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			_, _, err := splitResource(tt.resource)
			if (err != nil) != tt.expectedErr {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}
