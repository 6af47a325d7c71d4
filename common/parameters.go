package common

// default evaluation parameters
const WORD_BITS = 8
const NLAYERS = 3
const BATCH_COUNT = 100
const BATCH_START = 0
const WORKERS = 1
const DEBUG_LEVEL = 1

// default dump naming, relative to the root directory
const ROOT_DIR = "../results/"
const DUMP_PATTERN = "mult{version}_{sample}in_layer{layer}_out.txt"
const LABELS_FILE = "../data/t10k-labels-idx1-ubyte.gz"

// default float reference layout
const REFERENCE_WEIGHTS = "../data/EE800data/mnist_wfloat/layer{layer}_fw.npy"
const REFERENCE_INPUTS = "../data/EE800data/mnist_ifloat/inf_{sample}.npy"
const REFERENCE_LABELS = "../data/EE800data/floatmnist_labels.npy"
