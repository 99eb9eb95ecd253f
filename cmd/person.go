package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/facerecog"
	"github.com/photovault/photovault/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the face recognition gallery",
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people in the gallery",
	RunE:  runPersonList,
}

var personAddCmd = &cobra.Command{
	Use:   "add <id> <name> <image>...",
	Short: "Add face encodings for a person",
	Long: `Detect the most confident face in each image and store its
encoding under the given person. More encodings from different photos
improve recognition.

Examples:
  photovault person add 1 "Jana Novakova" jana1.jpg jana2.jpg`,
	Args: cobra.MinimumNArgs(3),
	RunE: runPersonAdd,
}

var personRemoveCmd = &cobra.Command{
	Use:   "remove <id-or-name>",
	Short: "Remove a person and all their encodings",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonRemove,
}

var personRecognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize faces in an image against the gallery",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonRecognize,
}

func init() {
	rootCmd.AddCommand(personCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personRemoveCmd)
	personCmd.AddCommand(personRecognizeCmd)

	personRecognizeCmd.Flags().Float64("threshold", facerecog.DefaultRecognitionThreshold,
		"Minimum confidence for a match (0-1)")
}

// openGallery wires the gallery from configuration and loads the
// persisted encodings.
func openGallery(cfg *config.Config) (*facerecog.Gallery, error) {
	store, err := storage.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	gallery := facerecog.NewGallery(store, cfg.Gallery.Path)
	if err := gallery.Load(); err != nil {
		return nil, fmt.Errorf("loading face gallery: %w", err)
	}
	return gallery, nil
}

// bestFace returns the most confident detection, or false if there is none.
func bestFace(detections []facedetect.Detection) (facedetect.Detection, bool) {
	if len(detections) == 0 {
		return facedetect.Detection{}, false
	}
	best := detections[0]
	for _, d := range detections[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}

func runPersonList(cmd *cobra.Command, args []string) error {
	gallery, err := openGallery(config.Load())
	if err != nil {
		return err
	}

	people := gallery.People()
	if len(people) == 0 {
		fmt.Println("The gallery is empty.")
		return nil
	}
	fmt.Printf("%-6s %-30s %s\n", "ID", "NAME", "ENCODINGS")
	for _, p := range people {
		fmt.Printf("%-6d %-30s %d\n", p.ID, p.Name, p.EncodingCount)
	}
	return nil
}

func runPersonAdd(cmd *cobra.Command, args []string) error {
	personID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid person id %q: %w", args[0], err)
	}
	name := args[1]
	files := args[2:]

	cfg := config.Load()
	detector := facedetect.FromConfig(cfg.Faces)
	if !detector.Available() {
		return fmt.Errorf("no face detection backend configured (set PHOTOVAULT_CASCADE_PATH or PHOTOVAULT_FACE_SERVICE_URL)")
	}
	gallery, err := openGallery(cfg)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Encoding faces"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	added := 0
	for _, path := range files {
		if err := addEncodingFromFile(gallery, detector, personID, name, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: skipped (%v)\n", path, err)
		} else {
			added++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	fmt.Printf("Stored %d encoding(s) for %s (id %d)\n", added, name, personID)
	if added == 0 {
		return fmt.Errorf("no encodings could be added")
	}
	return nil
}

func addEncodingFromFile(gallery *facerecog.Gallery, detector facedetect.Detector, personID int64, name, path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	faces, err := detector.Detect(img)
	if err != nil {
		return fmt.Errorf("detecting faces: %w", err)
	}
	face, ok := bestFace(faces)
	if !ok {
		return fmt.Errorf("no face found")
	}
	return gallery.AddPersonEncoding(personID, name, img, face, path)
}

func runPersonRemove(cmd *cobra.Command, args []string) error {
	gallery, err := openGallery(config.Load())
	if err != nil {
		return err
	}

	personID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		id, ok := gallery.FindPersonByName(args[0])
		if !ok {
			return fmt.Errorf("no person named %q in the gallery", args[0])
		}
		personID = id
	}

	if err := gallery.RemovePersonEncodings(personID); err != nil {
		return fmt.Errorf("removing person %d: %w", personID, err)
	}
	fmt.Printf("Removed person %d from the gallery\n", personID)
	return nil
}

func runPersonRecognize(cmd *cobra.Command, args []string) error {
	threshold := mustGetFloat64(cmd, "threshold")

	cfg := config.Load()
	detector := facedetect.FromConfig(cfg.Faces)
	if !detector.Available() {
		return fmt.Errorf("no face detection backend configured (set PHOTOVAULT_CASCADE_PATH or PHOTOVAULT_FACE_SERVICE_URL)")
	}
	gallery, err := openGallery(cfg)
	if err != nil {
		return err
	}

	img, err := loadImage(args[0])
	if err != nil {
		return err
	}
	faces, err := detector.Detect(img)
	if err != nil {
		return fmt.Errorf("detecting faces: %w", err)
	}
	if len(faces) == 0 {
		fmt.Println("No faces found.")
		return nil
	}

	for _, face := range faces {
		fmt.Printf("[%d,%d %dx%d] ", face.X, face.Y, face.Width, face.Height)
		if match := gallery.Recognize(img, face, threshold); match != nil {
			fmt.Printf("%s (confidence %.2f)\n", match.PersonName, match.Confidence)
		} else {
			fmt.Println("unknown")
		}
	}
	return nil
}
