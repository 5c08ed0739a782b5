package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	vesselGrpc "liyu1981.xyz/vessel-resource-service/pkg/grpc"
)

var maxCrew int = 200
var httpHostPort string = "127.0.0.1:8080"
var grpcHostPort string = "127.0.0.1:50051"

var grpcClient vesselGrpc.ResourceServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var resources = []string{"fuel", "oil", "food", "water"}

var failures atomic.Int64

func main() {
	crewIDs := make([]string, maxCrew)
	for i := range maxCrew {
		crewIDs[i] = "crew-" + uuid.NewString()[:8]
	}
	fmt.Printf("generated %v crew IDs\n", maxCrew)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = vesselGrpc.NewResourceServiceClient(conn)

	fmt.Printf("gRPC server verified and connected\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxCrew {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insertThresholds(crewIDs[i])
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rinserted thresholds for %v crew: used time=%v seconds, throughput=%v action/second\n",
		maxCrew, usedTime.Seconds(), float64(maxCrew*len(resources))/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := range maxCrew {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doActions(crewIDs[i])
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v crew: used time=%v seconds, throughput=%v action/second, failures=%v\n",
		maxCrew, usedTime.Seconds(), float64(maxCrew*3)/usedTime.Seconds(), failures.Load(),
	)
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func rndResource() string {
	rndMu.Lock()
	defer rndMu.Unlock()
	return resources[rnd.Intn(len(resources))]
}

func postJSON(path, actor string, payload any) {
	jsonData, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", httpHostPort, path), bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actor)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		failures.Add(1)
	}
}

func insertThresholds(crewID string) {
	for _, r := range resources {
		warning := rndFloat64(30.0, 50.0, 1)
		critical := rndFloat64(10.0, 25.0, 1)
		postJSON(fmt.Sprintf("/thresholds/%s/%s", crewID, r), crewID, map[string]float64{
			"warning":  warning,
			"critical": critical,
		})
	}
}

func doActions(crewID string) {
	actions := []func(){
		genConsumptionAction(crewID),
		genStatusAction(crewID),
		genRefillAction(crewID),
	}
	for _, action := range actions {
		action()
		rndMu.Lock()
		pause := time.Duration(100+rnd.Int31n(1000)) * time.Millisecond
		rndMu.Unlock()
		time.Sleep(pause)
	}
}

func applyAction(crewID, action string, amount float64) {
	resource := rndResource()
	if flipCoin() {
		postJSON(fmt.Sprintf("/resources/%s/actions", resource), crewID, map[string]any{
			"amount": amount,
			"action": action,
		})
		return
	}

	req, _ := structpb.NewStruct(map[string]any{
		"resource": resource,
		"action":   action,
		"amount":   amount,
	})
	ctx := metadata.AppendToOutgoingContext(context.Background(), vesselGrpc.MetadataActorID, crewID)
	if _, err := grpcClient.ApplyAction(ctx, req); err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
	}
}

func genConsumptionAction(crewID string) func() {
	return func() {
		applyAction(crewID, "consumption", rndFloat64(1.0, 20.0, 1))
	}
}

func genRefillAction(crewID string) func() {
	return func() {
		applyAction(crewID, "refill", rndFloat64(1.0, 20.0, 1))
	}
}

func genStatusAction(crewID string) func() {
	return func() {
		if flipCoin() {
			req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/resources", httpHostPort), nil)
			req.Header.Set("X-Actor-ID", crewID)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				failures.Add(1)
				fmt.Printf("\nerror: %v\n", err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				failures.Add(1)
			}
			return
		}

		ctx := metadata.AppendToOutgoingContext(context.Background(), vesselGrpc.MetadataActorID, crewID)
		if _, err := grpcClient.GetStatus(ctx, &emptypb.Empty{}); err != nil {
			failures.Add(1)
			fmt.Printf("\nerror: %v\n", err)
		}
	}
}
