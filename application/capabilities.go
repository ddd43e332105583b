package application

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
)

const (
	ImageJPEGProperty = "image_jpeg"
	FrameProperty     = "frame"
	VersionProperty   = "version"

	DisplayWallPort = ":8888"
)

var ErrNoImage = errors.New("application returned no image")

// DisplayWalls are the known display wall hosts. A resource naming one of
// them is reached on DisplayWallPort.
var DisplayWalls = map[string]string{
	"FLOOR_0": "bbpav02.bbp.epfl.ch",
	"FLOOR_5": "bbpav05.bbp.epfl.ch",
	"FLOOR_6": "bbpav06.bbp.epfl.ch",
}

// ResourceURL expands a display wall name or host into the address of its
// application. Other resources are returned unchanged.
func ResourceURL(resource string) string {
	if host, ok := DisplayWalls[strings.ToUpper(resource)]; ok {
		return host + DisplayWallPort
	}
	for _, host := range DisplayWalls {
		if resource == host {
			return host + DisplayWallPort
		}
	}
	return resource
}

type Version struct {
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Patch    int `json:"patch"`
	Revision int `json:"revision"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
}

// Version is read from the version object, when the application has one.
func (a *Application) Version() (Version, bool) {
	version := Version{}

	property, ok := a.properties[VersionProperty]
	if !ok || property.Schema().Kind != KindObject {
		return version, false
	}

	err := property.Decode(&version)
	if err != nil {
		a.logger.Error("failed-to-decode-version", err)
		return version, false
	}
	return version, true
}

// ImageCapturer fetches renderings from applications exposing image-jpeg.
type ImageCapturer struct {
	logger   lager.Logger
	property *Property
}

func (a *Application) ImageCapturer() (*ImageCapturer, bool) {
	property, ok := a.properties[ImageJPEGProperty]
	if !ok || !property.Readable() {
		return nil, false
	}
	return &ImageCapturer{
		logger:   a.logger.Session("image-capturer"),
		property: property,
	}, true
}

// Image requests a new rendering and returns the JPEG bytes.
func (c *ImageCapturer) Image() ([]byte, error) {
	logger := c.logger.Session("image")

	err := c.property.Request()
	if err != nil {
		logger.Error("failed-to-request-image", err)
		return nil, err
	}

	field, _ := c.property.Field("data")
	data, _ := field.(string)
	if data == "" {
		logger.Info("no-image")
		return nil, ErrNoImage
	}

	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		logger.Error("failed-to-decode-image", err)
		return nil, fmt.Errorf("%w: %s", viztools.ErrMalformedResponse, err)
	}

	logger.Debug("received-image", lager.Data{"size": bytefmt.ByteSize(uint64(len(image)))})
	return image, nil
}

type Frame struct {
	Start   int `json:"start"`
	End     int `json:"end"`
	Current int `json:"current"`
	Delta   int `json:"delta"`
}

// FrameController drives simulation playback of applications exposing a
// readable and writable frame object.
type FrameController struct {
	property *Property
}

func (a *Application) FrameController() (*FrameController, bool) {
	property, ok := a.properties[FrameProperty]
	if !ok || !property.Readable() || !property.Writable() || property.Schema().Kind != KindObject {
		return nil, false
	}
	return &FrameController{property: property}, true
}

// Frame returns the playback state as currently reported by the application.
func (c *FrameController) Frame() (Frame, error) {
	frame := Frame{}

	err := c.property.Request()
	if err != nil {
		return frame, err
	}

	err = c.property.Decode(&frame)
	return frame, err
}

func (c *FrameController) SetFrame(current int) error {
	return c.property.Update(map[string]interface{}{"current": current})
}

// Streamer exposes the live image stream of a session.
type Streamer struct {
	commander viztools.SessionCommander
}

// Streamer is available when the session reports a streaming URL.
func (a *Application) Streamer() (*Streamer, bool) {
	streamer := &Streamer{commander: a.commander}
	if _, err := streamer.StreamingURL(); err != nil {
		a.logger.Debug("streaming-unavailable", lager.Data{"reason": err.Error()})
		return nil, false
	}
	return streamer, true
}

func (s *Streamer) StreamingURL() (string, error) {
	result, err := s.commander.StreamingURL()
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return "", &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result}
	}

	feed := struct {
		URI string `json:"uri"`
	}{}
	if result.Decode(&feed) != nil || feed.URI == "" {
		return "", fmt.Errorf("%w: streaming uri missing", viztools.ErrMalformedResponse)
	}
	return feed.URI, nil
}
