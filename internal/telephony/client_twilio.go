package telephony

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioClient struct {
	client     *twilio.RestClient
	accountSID string
	authToken  string
	from       string
}

func NewTwilioClient() *TwilioClient {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")
	if sid == "" || token == "" || from == "" {
		log.Fatal("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN or TWILIO_PHONE_NUMBER not set")
	}

	return &TwilioClient{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: sid,
			Password: token,
		}),
		accountSID: sid,
		authToken:  token,
		from:       from,
	}
}

func (c *TwilioClient) PlaceCall(ctx context.Context, to, callbackURL string) (string, error) {
	params := &api.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetUrl(callbackURL)
	params.SetMethod("POST")
	params.SetRecord(true)

	resp, err := c.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("create call: %w", err)
	}
	if resp.Sid == nil || *resp.Sid == "" {
		return "", fmt.Errorf("create call: empty sid in response")
	}
	return *resp.Sid, nil
}

// FetchRecording берёт первую запись звонка и сохраняет её mp3 в outPath.
func (c *TwilioClient) FetchRecording(ctx context.Context, callSID, outPath string) error {
	params := &api.ListRecordingParams{}
	params.SetCallSid(callSID)

	recordings, err := c.client.Api.ListRecording(params)
	if err != nil {
		return fmt.Errorf("list recordings: %w", err)
	}
	if len(recordings) == 0 || recordings[0].Sid == nil {
		return fmt.Errorf("no recordings for call %s", callSID)
	}

	mediaURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Recordings/%s.mp3",
		c.accountSID, *recordings[0].Sid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("download recording: %s", string(b))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
